package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	BatchGet(ctx context.Context, userIDs []string) (map[string]User, error)
	Create(ctx context.Context, u User) error
	AddGroup(ctx context.Context, userID, groupID string) error
	RegisterDeviceToken(ctx context.Context, userID, token string) error
	RemoveDeviceTokens(ctx context.Context, userID string, tokens []string) error
}
