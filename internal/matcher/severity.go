package matcher

// Severity is a coarse confidence class derived from a distance score.
type Severity int

const (
	SeverityHigh Severity = iota
	SeverityMedium
	SeverityLow
	SeverityUncertain
	SeverityVeryLow
)

// Classify maps a score to a severity. Scores are distances, so small values
// are confident matches. Scores from 0.3 up to 0.75 are uncertain.
func Classify(score float64) Severity {
	switch {
	case score < 0.1:
		return SeverityHigh
	case score < 0.2:
		return SeverityMedium
	case score < 0.3:
		return SeverityLow
	case score >= 0.75:
		return SeverityVeryLow
	default:
		return SeverityUncertain
	}
}

// String returns the operator-facing label.
func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	case SeverityVeryLow:
		return "very low"
	default:
		return "uncertain"
	}
}

// Color is the display color for the severity as a hex RGB string.
func (s Severity) Color() string {
	switch s {
	case SeverityHigh:
		return "#22c55e" // green
	case SeverityMedium:
		return "#eab308" // yellow
	case SeverityLow:
		return "#f97316" // orange
	case SeverityVeryLow:
		return "#ef4444" // red
	default:
		return "#3b82f6" // blue
	}
}

// MarshalText renders the label in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
