package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
	secerrors "github.com/khanhnv2901/seca-scan/internal/shared/errors"
)

const vulnerablePage = `<html><body>
<form action="/search"><input name="q"><input type="submit"></form>
<a href="/admin">Admin</a>
</body></html>`

func newVulnerableSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(vulnerablePage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScanCommandJSON(t *testing.T) {
	srv := newVulnerableSite(t)

	stdout, _, err := executeCommand(t, "scan", srv.URL, "--allow-loopback", "--json")
	if err != nil {
		t.Fatalf("scan command failed: %v", err)
	}

	var result scan.Result
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("failed to decode output %q: %v", stdout, err)
	}
	if result.URL != srv.URL {
		t.Fatalf("expected url %s, got %s", srv.URL, result.URL)
	}
	if len(result.Findings) != 3 {
		t.Fatalf("expected 3 findings, got %+v", result.Findings)
	}
	// 3 missing headers + 2 inputs + exposed admin path
	if result.RiskScore != 8 || result.RiskLevel != scan.RiskHigh {
		t.Fatalf("expected score 8/High, got %d/%s", result.RiskScore, result.RiskLevel)
	}
	if len(result.Tips) != 4 {
		t.Fatalf("expected 4 tips, got %v", result.Tips)
	}
}

func TestScanCommandText(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})

	srv := newVulnerableSite(t)

	stdout, _, err := executeCommand(t, "scan", srv.URL, "--allow-loopback")
	if err != nil {
		t.Fatalf("scan command failed: %v", err)
	}

	for _, want := range []string{
		"Target: " + srv.URL,
		"Risk level: High (score 8)",
		"Missing Headers (3): X-Frame-Options, Content-Security-Policy, X-Content-Type-Options",
		"XSS (2)",
		checker.TipRestrictAdmin,
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestScanCommandRejectsInvalidTargets(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   error
	}{
		{name: "empty", target: "  ", want: secerrors.ErrEmptyTarget},
		{name: "ftp scheme", target: "ftp://example.com", want: secerrors.ErrUnsupportedScheme},
		{name: "localhost", target: "localhost:8000", want: secerrors.ErrLoopbackTarget},
		{name: "loopback ip", target: "http://127.0.0.1/", want: secerrors.ErrLoopbackTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, "scan", tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if stdout != "" {
				t.Fatalf("expected no report for rejected target, got %q", stdout)
			}
		})
	}
}

func TestScanCommandAllowLoopbackKeepsSchemeCheck(t *testing.T) {
	_, _, err := executeCommand(t, "scan", "ftp://localhost/", "--allow-loopback")
	if !errors.Is(err, secerrors.ErrUnsupportedScheme) {
		t.Fatalf("expected unsupported scheme error, got %v", err)
	}
}

func TestScanCommandFetchFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	stdout, _, err := executeCommand(t, "scan", target, "--allow-loopback", "--json", "--timeout", "2")
	if err != nil {
		t.Fatalf("fetch failure should not fail the command: %v", err)
	}

	var result scan.Result
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].Type != scan.FindingFetchError {
		t.Fatalf("expected single fetch error finding, got %+v", result.Findings)
	}
	if result.RiskScore != 5 || result.RiskLevel != scan.RiskMedium {
		t.Fatalf("expected score 5/Medium, got %d/%s", result.RiskScore, result.RiskLevel)
	}
}
