// Package checker implements the seca-scan engine.
//
// Architecture overview:
//
//   - HTTPFetcher performs the single GET of a scan (redirects followed,
//     bounded timeout) and returns a scan.Artifact holding headers and the
//     decoded body.
//   - The detector set is a fixed slice of pure functions run in order:
//     DetectMissingHeaders, DetectInputFields, DetectExposedAdminLogin. Each
//     yields at most one finding.
//   - Score and LevelForScore fold findings into a risk score and a
//     Low/Medium/High level; Advise turns findings into remediation tips.
//   - Scanner wires the above together. A failed fetch becomes an Error
//     finding instead of an error return, so callers always get a result.
//
// ValidateScanTarget is the admission check the API and CLI run before
// handing a URL to Scanner; the engine itself does not re-validate.
package checker
