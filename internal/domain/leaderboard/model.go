package leaderboard

import "github.com/JuanCGomezS/polla-club/internal/domain/prediction"

// MatchEntry is one row of a single match's leaderboard.
type MatchEntry struct {
	UserID     string
	UserName   string
	Prediction prediction.Prediction
	Points     int
	Rank       int
}

// GroupEntry is one row of a group's cumulative leaderboard.
type GroupEntry struct {
	UserID           string
	UserName         string
	TotalPoints      int
	PredictionsCount int
	Rank             int
}
