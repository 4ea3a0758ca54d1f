package prediction

import (
	"context"
	"time"
)

// Stream delivers prediction snapshots for one group as predictions are
// created or updated. Close must be called to release the listener.
type Stream interface {
	Updates() <-chan []Prediction
	Err() error
	Close()
}

type Repository interface {
	GetByUserAndMatch(ctx context.Context, groupID, userID, matchID string) (Prediction, bool, error)
	ListByMatch(ctx context.Context, groupID, matchID string) ([]Prediction, error)
	ListByUser(ctx context.Context, groupID, userID string) ([]Prediction, error)
	ListByGroup(ctx context.Context, groupID string) ([]Prediction, error)
	Create(ctx context.Context, groupID string, p Prediction) error
	// UpdateScores rewrites the guessed scores of an existing prediction and
	// clears any cached points, keeping the record's identity.
	UpdateScores(ctx context.Context, groupID, predictionID string, team1Score, team2Score int, submittedAt time.Time) error
	// CachePoints persists computed points onto the record. Losing this write
	// is harmless: points are recomputed on the next read.
	CachePoints(ctx context.Context, groupID, predictionID string, points int, breakdown Breakdown, calculatedAt time.Time) error
	Subscribe(ctx context.Context, groupID string) (Stream, error)
}
