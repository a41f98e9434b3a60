package readiness

// Level buckets an overall readiness score.
type Level string

const (
	LevelReady      Level = "ready"
	LevelModerate   Level = "moderate"
	LevelFatigued   Level = "fatigued"
	LevelRecovering Level = "recovering"
)

// StatusInfo is the user-facing interpretation of a score.
type StatusInfo struct {
	Level          Level  `json:"level"`
	Label          string `json:"label"`
	Recommendation string `json:"recommendation"`
}

// Status maps a 0-100 score onto a readiness level.
func Status(score int) StatusInfo {
	switch {
	case score >= 80:
		return StatusInfo{LevelReady, "Ready to train", "Go for a hard session or a personal best."}
	case score >= 60:
		return StatusInfo{LevelModerate, "Moderately recovered", "Train at normal volume and avoid maximal efforts."}
	case score >= 40:
		return StatusInfo{LevelFatigued, "Fatigued", "Keep it light: technique work, mobility or easy cardio."}
	default:
		return StatusInfo{LevelRecovering, "Recovering", "Rest or take an active recovery day."}
	}
}
