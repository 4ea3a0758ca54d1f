package prediction

import "time"

// Breakdown records how a prediction's points split across the scoring
// categories, zero when a category did not trigger.
type Breakdown struct {
	ExactScore     int
	Winner         int
	GoalDifference int
}

// Prediction is one user's guessed final score for one match within a group.
// There is exactly one logical prediction per (group, user, match); it stays
// editable only while the match is scheduled. Points and Breakdown are a
// lazily-filled cache, present only once computed against an official result.
type Prediction struct {
	ID           string
	GroupID      string
	UserID       string
	MatchID      string
	Team1Score   int
	Team2Score   int
	SubmittedAt  time.Time
	Points       *int
	Breakdown    *Breakdown
	CalculatedAt *time.Time
}

// CachedPoints returns the cached points value, zero when none is cached.
func (p Prediction) CachedPoints() int {
	if p.Points == nil {
		return 0
	}
	return *p.Points
}
