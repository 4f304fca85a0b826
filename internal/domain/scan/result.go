package scan

import (
	"net/http"
)

// FindingType tags the detector that produced a finding. Values are the wire
// strings exposed by the REST API.
type FindingType string

const (
	FindingMissingHeaders    FindingType = "Missing Headers"
	FindingInputFields       FindingType = "XSS"
	FindingExposedAdminLogin FindingType = "Exposed Admin/Login URL"
	FindingFetchError        FindingType = "Error"
)

// RiskLevel is the three-tier verdict derived from a risk score
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Artifact is what a single fetch of the target yields
type Artifact struct {
	Headers http.Header
	Body    string
}

// Finding describes one category of weakness observed in an artifact
type Finding struct {
	Type    FindingType `json:"type"`
	Count   int         `json:"count"`
	Details []string    `json:"details"`
}

// HasDetail reports whether value appears verbatim in the finding details.
func (f Finding) HasDetail(value string) bool {
	for _, d := range f.Details {
		if d == value {
			return true
		}
	}
	return false
}

// Result is the outcome of one scan
type Result struct {
	URL       string    `json:"url"`
	Findings  []Finding `json:"vulnerabilities"`
	RiskScore int       `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Tips      []string  `json:"tips"`
}

