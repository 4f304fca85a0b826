package checker

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
)

// Header names checked by DetectMissingHeaders, in report order.
const (
	HeaderXFrameOptions         = "X-Frame-Options"
	HeaderContentSecurityPolicy = "Content-Security-Policy"
	HeaderXContentTypeOptions   = "X-Content-Type-Options"
)

const (
	inputFieldsNote  = "Potential input fields without sanitization"
	exposedPathsNote = "/admin or /login found in HTML"
)

var requiredHeaders = []string{
	HeaderXFrameOptions,
	HeaderContentSecurityPolicy,
	HeaderXContentTypeOptions,
}

var exposedPathMarkers = []string{"/admin", "/login"}

// Detector inspects an artifact and reports at most one finding.
type Detector func(scan.Artifact) (scan.Finding, bool)

// detectors run in this order for every fetched artifact; the order decides
// finding order and therefore tip order.
var detectors = []Detector{
	DetectMissingHeaders,
	DetectInputFields,
	DetectExposedAdminLogin,
}

// RunDetectors applies the fixed detector sequence to an artifact.
func RunDetectors(a scan.Artifact) []scan.Finding {
	findings := make([]scan.Finding, 0, len(detectors))
	for _, detect := range detectors {
		if f, ok := detect(a); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// DetectMissingHeaders reports the required security headers the response
// does not carry. Keys are matched in canonical form; a header with an empty
// value still counts as present.
func DetectMissingHeaders(a scan.Artifact) (scan.Finding, bool) {
	var missing []string
	for _, name := range requiredHeaders {
		if _, ok := a.Headers[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return scan.Finding{}, false
	}
	return scan.Finding{
		Type:    scan.FindingMissingHeaders,
		Count:   len(missing),
		Details: missing,
	}, true
}

// DetectInputFields counts <input> elements anywhere in the body.
func DetectInputFields(a scan.Artifact) (scan.Finding, bool) {
	n := countElements(a.Body, atom.Input)
	if n == 0 {
		return scan.Finding{}, false
	}
	return scan.Finding{
		Type:    scan.FindingInputFields,
		Count:   n,
		Details: []string{inputFieldsNote},
	}, true
}

// DetectExposedAdminLogin looks for /admin or /login anywhere in the raw body.
// Repeated or combined matches still produce a single finding.
func DetectExposedAdminLogin(a scan.Artifact) (scan.Finding, bool) {
	for _, marker := range exposedPathMarkers {
		if strings.Contains(a.Body, marker) {
			return scan.Finding{
				Type:    scan.FindingExposedAdminLogin,
				Count:   1,
				Details: []string{exposedPathsNote},
			}, true
		}
	}
	return scan.Finding{}, false
}

// countElements tokenizes body and counts start and self-closing tags of the
// given element. Only script and style switch the tokenizer into raw text, so
// inputs nested in textarea, title or noscript are still counted.
func countElements(body string, tag atom.Atom) int {
	z := html.NewTokenizer(strings.NewReader(body))
	count := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return count
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == tag {
				count++
			}
			if a != atom.Script && a != atom.Style {
				z.NextIsNotRawText()
			}
		}
	}
}
