package checker

import "github.com/khanhnv2901/seca-scan/internal/domain/scan"

// Remediation tips returned with scan results.
const (
	TipAddCSP           = "Add a Content-Security-Policy header."
	TipAddXFrameOptions = "Include X-Frame-Options to prevent clickjacking."
	TipSanitizeInputs   = "Sanitize all user inputs to prevent XSS attacks."
	TipRestrictAdmin    = "Restrict access to admin panels and hide them from public."
)

// Advise maps findings to remediation tips in finding order. Duplicates are
// kept. A missing X-Content-Type-Options header has no tip of its own.
func Advise(findings []scan.Finding) []string {
	tips := make([]string, 0, len(findings))
	for _, f := range findings {
		switch f.Type {
		case scan.FindingMissingHeaders:
			if f.HasDetail(HeaderContentSecurityPolicy) {
				tips = append(tips, TipAddCSP)
			}
			if f.HasDetail(HeaderXFrameOptions) {
				tips = append(tips, TipAddXFrameOptions)
			}
		case scan.FindingInputFields:
			tips = append(tips, TipSanitizeInputs)
		case scan.FindingExposedAdminLogin:
			tips = append(tips, TipRestrictAdmin)
		}
	}
	return tips
}
