package match

import "context"

// Stream delivers match snapshots for one competition as results and
// statuses change. Close must be called to release the underlying listener.
type Stream interface {
	Updates() <-chan []Match
	Err() error
	Close()
}

type Repository interface {
	GetByID(ctx context.Context, competitionID, matchID string) (Match, bool, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Match, error)
	Subscribe(ctx context.Context, competitionID string) (Stream, error)
}
