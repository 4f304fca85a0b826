package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
	secerrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

var (
	scanJSON          bool
	scanAllowLoopback bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a single URL and print its risk report",
	Long: `Fetch the target once and run the passive checks against the response:
missing security headers, HTML input fields and exposed admin/login paths.
Targets without a scheme are treated as http://.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]
	if strings.TrimSpace(target) != "" {
		target = checker.NormalizeHTTPTarget(target)
	}

	if _, err := checker.ValidateScanTarget(target); err != nil {
		if !scanAllowLoopback || !errors.Is(err, secerrors.ErrLoopbackTarget) {
			return err
		}
	}

	scanner := checker.NewScanner(newFetcher(), logger)
	result := scanner.Scan(cmd.Context(), target)

	out := cmd.OutOrStdout()
	if scanJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printScanResult(out, result)
	return nil
}

func printScanResult(w io.Writer, result scan.Result) {
	fmt.Fprintf(w, "%s Target: %s\n", colorInfo("→"), result.URL)
	fmt.Fprintf(w, "  Risk level: %s (score %d)\n", formatRiskLevel(result.RiskLevel), result.RiskScore)

	if len(result.Findings) == 0 {
		fmt.Fprintf(w, "%s No findings\n", colorSuccess("✓"))
	} else {
		fmt.Fprintln(w, "  Findings:")
		for _, f := range result.Findings {
			line := fmt.Sprintf("    - %s (%d)", f.Type, f.Count)
			if len(f.Details) > 0 {
				line += ": " + strings.Join(f.Details, ", ")
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(result.Tips) > 0 {
		fmt.Fprintln(w, "  Tips:")
		for _, tip := range result.Tips {
			fmt.Fprintf(w, "    - %s\n", tip)
		}
	}
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print the result as JSON")
	scanCmd.Flags().BoolVar(&scanAllowLoopback, "allow-loopback", false, "Permit localhost and loopback targets")
}
