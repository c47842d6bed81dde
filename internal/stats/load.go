package stats

// Load is a coarse workload signal shown next to the numbers.
type Load string

const (
	LoadLow    Load = "low"
	LoadMedium Load = "medium"
	LoadHigh   Load = "high"
)

// LoadScore weighs overdue tasks double and caps at 10.
func LoadScore(overdue, inProgress int) int {
	score := overdue*2 + inProgress/5
	if score > 10 {
		return 10
	}
	return score
}

func LoadFor(overdue, inProgress int) Load {
	score := LoadScore(overdue, inProgress)
	switch {
	case score >= 7:
		return LoadHigh
	case score >= 4:
		return LoadMedium
	default:
		return LoadLow
	}
}
