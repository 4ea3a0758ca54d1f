package competition

import "context"

// Repository exposes competition read operations.
type Repository interface {
	GetByID(ctx context.Context, competitionID string) (Competition, bool, error)
	List(ctx context.Context) ([]Competition, error)
}
