package model

// Severity ranks a conflict or recommendation. Lower rank is more severe;
// output lists are sorted ascending by rank so critical entries surface first.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

var severityRanks = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

func (s Severity) Rank() int {
	if r, ok := severityRanks[s]; ok {
		return r
	}
	// Unknown severities sort last.
	return len(severityRanks)
}

// StepDown returns the next less severe level, saturating at low.
func (s Severity) StepDown() Severity {
	switch s {
	case SeverityCritical:
		return SeverityHigh
	case SeverityHigh:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
