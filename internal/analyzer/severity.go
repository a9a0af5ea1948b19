package analyzer

// Severity ranks how badly a finding endangers a provisioning run.
type Severity int

const (
	// Safe indicates no problem detected.
	Safe Severity = iota
	// Low indicates a style or portability concern.
	Low
	// Medium indicates the plan still applies but its layout is misleading.
	Medium
	// High indicates a statement that will fail or stop being idempotent.
	High
	// Critical indicates a statement that can never succeed in plan order.
	Critical
)

// String returns the uppercase label for the severity level.
func (s Severity) String() string {
	switch s {
	case Safe:
		return "SAFE"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Blocking reports whether findings of this severity stop apply without --force.
func (s Severity) Blocking() bool {
	return s >= High
}
