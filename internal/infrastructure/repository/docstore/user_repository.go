package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/user"
	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

const usersCollection = "users"

type UserRepository struct {
	store ds.Store

	now func() time.Time
}

func NewUserRepository(store ds.Store) *UserRepository {
	return &UserRepository{store: store, now: time.Now}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	doc, found, err := r.store.Get(ctx, userPath(userID))
	if err != nil {
		return user.User{}, false, fmt.Errorf("get user %q: %w", userID, err)
	}
	if !found {
		return user.User{}, false, nil
	}
	return decodeUser(doc), true, nil
}

// BatchGet returns the users that exist, keyed by ID. Missing IDs are simply
// absent from the result.
func (r *UserRepository) BatchGet(ctx context.Context, userIDs []string) (map[string]user.User, error) {
	out := make(map[string]user.User, len(userIDs))
	for _, id := range userIDs {
		if _, ok := out[id]; ok {
			continue
		}
		u, found, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			out[id] = u
		}
	}
	return out, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}
	if err := r.store.Set(ctx, userPath(u.ID), encodeUser(u)); err != nil {
		return fmt.Errorf("create user %q: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepository) AddGroup(ctx context.Context, userID, groupID string) error {
	u, found, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("add group: user %q does not exist", userID)
	}
	for _, id := range u.Groups {
		if id == groupID {
			return nil
		}
	}

	err = r.store.Update(ctx, userPath(userID), map[string]any{
		"groups": append(u.Groups, groupID),
	})
	if err != nil {
		return fmt.Errorf("add group %q to user %q: %w", groupID, userID, err)
	}
	return nil
}

func (r *UserRepository) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	u, found, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("register device token: user %q does not exist", userID)
	}
	for _, t := range u.DeviceTokens {
		if t == token {
			return nil
		}
	}

	err = r.store.Update(ctx, userPath(userID), map[string]any{
		"deviceTokens": append(u.DeviceTokens, token),
	})
	if err != nil {
		return fmt.Errorf("register device token for user %q: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) RemoveDeviceTokens(ctx context.Context, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	u, found, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	drop := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		drop[t] = struct{}{}
	}
	kept := make([]string, 0, len(u.DeviceTokens))
	for _, t := range u.DeviceTokens {
		if _, ok := drop[t]; !ok {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(u.DeviceTokens) {
		return nil
	}

	err = r.store.Update(ctx, userPath(userID), map[string]any{
		"deviceTokens": kept,
	})
	if err != nil {
		return fmt.Errorf("remove device tokens for user %q: %w", userID, err)
	}
	return nil
}

func userPath(userID string) string {
	return usersCollection + "/" + userID
}

func decodeUser(doc ds.Document) user.User {
	f := doc.Fields
	return user.User{
		ID:           doc.ID(),
		DisplayName:  asString(f["displayName"]),
		Email:        asString(f["email"]),
		Groups:       asStringSlice(f["groups"]),
		DeviceTokens: asStringSlice(f["deviceTokens"]),
		CreatedAt:    asTime(f["createdAt"]),
	}
}

func encodeUser(u user.User) map[string]any {
	return map[string]any{
		"displayName":  u.DisplayName,
		"email":        u.Email,
		"groups":       u.Groups,
		"deviceTokens": u.DeviceTokens,
		"createdAt":    encodeTime(u.CreatedAt),
	}
}
