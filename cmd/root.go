package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/seca-scan/internal/logging"
)

var cfgFile string
var logger = zap.NewNop()
var closeLogger = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:           "seca-scan",
	Short:         "Passive web vulnerability scanner (for authorized testing only)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfigFile(cfgFile); err != nil {
			return err
		}
		applyConfigDefaults(cmd)

		logCfg := appConfig.Log.loggingConfig()
		logCfg.Console = cmd.ErrOrStderr()
		l, closer, err := logging.New(logCfg)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		closeLogger = closer
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if closeErr := closeLogger(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, colorError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.seca-scan.yaml)")
	rootCmd.PersistentFlags().IntVar(&appConfig.Scan.TimeoutSecs, "timeout", appConfig.Scan.TimeoutSecs, "Fetch timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&appConfig.Log.File, "log-file", appConfig.Log.File, "Log file path (empty disables file logging)")
	rootCmd.PersistentFlags().StringVar(&appConfig.Log.Level, "log-level", appConfig.Log.Level, "Log level: debug, info, warn, error")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
