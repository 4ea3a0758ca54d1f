package group

import "context"

type Repository interface {
	Create(ctx context.Context, g Group) error
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	GetByCode(ctx context.Context, code string) (Group, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Group, error)
	ListActiveByCompetition(ctx context.Context, competitionID string) ([]Group, error)
	AddParticipant(ctx context.Context, groupID, userID string) error
}
