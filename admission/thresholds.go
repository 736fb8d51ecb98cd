// Package admission implements the daily-quota-aware gate in front of report
// ingestion: how much evidence a candidate needs and how many candidates one
// run may admit, given how many reports were already accepted today.
package admission

// IntakeThresholds are the parameters one ingestion run operates under.
type IntakeThresholds struct {
	// MinEvidence is the minimum number of distinct contributing sources a
	// candidate needs to be admitted.
	MinEvidence int

	// MaxIntake bounds how many candidates one run may admit, regardless of
	// how many qualify.
	MaxIntake int
}

// Thresholds maps the number of reports accepted today to intake parameters.
// Early in the day the bar is low and intake broad; as the daily target fills
// the bar rises sharply, and once the target is met only heavily corroborated
// events get through.
func Thresholds(acceptedToday, dailyTarget int) IntakeThresholds {
	remaining := dailyTarget - acceptedToday

	switch {
	case remaining <= 0:
		return IntakeThresholds{MinEvidence: 30, MaxIntake: 1}
	case remaining <= 2:
		return IntakeThresholds{MinEvidence: 22, MaxIntake: 1}
	case remaining <= 5:
		return IntakeThresholds{MinEvidence: 16, MaxIntake: 1}
	case remaining <= 9:
		return IntakeThresholds{MinEvidence: 12, MaxIntake: 2}
	default:
		return IntakeThresholds{MinEvidence: 8, MaxIntake: 3}
	}
}
