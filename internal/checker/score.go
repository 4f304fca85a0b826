package checker

import "github.com/khanhnv2901/seca-scan/internal/domain/scan"

// Flat contributions; missing headers and input fields add one point per unit.
const (
	exposedAdminLoginWeight = 3
	fetchErrorWeight        = 5
)

// Risk level thresholds, inclusive lower bounds.
const (
	HighRiskThreshold   = 7
	MediumRiskThreshold = 3
)

// Contribution returns the risk points a single finding adds to the score.
func Contribution(f scan.Finding) int {
	switch f.Type {
	case scan.FindingMissingHeaders, scan.FindingInputFields:
		return f.Count
	case scan.FindingExposedAdminLogin:
		return exposedAdminLoginWeight
	case scan.FindingFetchError:
		return fetchErrorWeight
	default:
		return 0
	}
}

// Score sums the contributions of all findings.
func Score(findings []scan.Finding) int {
	total := 0
	for _, f := range findings {
		total += Contribution(f)
	}
	return total
}

// LevelForScore maps a risk score to its level.
func LevelForScore(score int) scan.RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return scan.RiskHigh
	case score >= MediumRiskThreshold:
		return scan.RiskMedium
	default:
		return scan.RiskLow
	}
}
