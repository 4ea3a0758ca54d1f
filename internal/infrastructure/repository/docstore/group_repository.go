package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

const groupsCollection = "groups"

type GroupRepository struct {
	store ds.Store

	now func() time.Time
}

func NewGroupRepository(store ds.Store) *GroupRepository {
	return &GroupRepository{store: store, now: time.Now}
}

func (r *GroupRepository) Create(ctx context.Context, g group.Group) error {
	if err := r.store.Set(ctx, groupPath(g.ID), encodeGroup(g)); err != nil {
		return fmt.Errorf("create group %q: %w", g.ID, err)
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (group.Group, bool, error) {
	doc, found, err := r.store.Get(ctx, groupPath(groupID))
	if err != nil {
		return group.Group{}, false, fmt.Errorf("get group %q: %w", groupID, err)
	}
	if !found {
		return group.Group{}, false, nil
	}
	return decodeGroup(doc), true, nil
}

func (r *GroupRepository) GetByCode(ctx context.Context, code string) (group.Group, bool, error) {
	docs, err := r.store.Query(ctx, groupsCollection, []ds.Filter{
		ds.Where("code", ds.OpEqual, code),
	}, "")
	if err != nil {
		return group.Group{}, false, fmt.Errorf("get group by code: %w", err)
	}
	if len(docs) == 0 {
		return group.Group{}, false, nil
	}
	return decodeGroup(docs[0]), true, nil
}

func (r *GroupRepository) ListByUser(ctx context.Context, userID string) ([]group.Group, error) {
	docs, err := r.store.Query(ctx, groupsCollection, []ds.Filter{
		ds.Where("participants", ds.OpArrayContains, userID),
	}, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("list groups for user %q: %w", userID, err)
	}

	out := make([]group.Group, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeGroup(doc))
	}
	return out, nil
}

func (r *GroupRepository) ListActiveByCompetition(ctx context.Context, competitionID string) ([]group.Group, error) {
	docs, err := r.store.Query(ctx, groupsCollection, []ds.Filter{
		ds.Where("competitionId", ds.OpEqual, competitionID),
		ds.Where("isActive", ds.OpEqual, true),
	}, "")
	if err != nil {
		return nil, fmt.Errorf("list active groups for competition %q: %w", competitionID, err)
	}

	out := make([]group.Group, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeGroup(doc))
	}
	return out, nil
}

func (r *GroupRepository) AddParticipant(ctx context.Context, groupID, userID string) error {
	g, found, err := r.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("add participant: group %q does not exist", groupID)
	}
	for _, id := range g.Participants {
		if id == userID {
			return nil
		}
	}

	participants := append(g.Participants, userID)
	err = r.store.Update(ctx, groupPath(groupID), map[string]any{
		"participants": participants,
		"updatedAt":    encodeTime(r.now()),
	})
	if err != nil {
		return fmt.Errorf("add participant to group %q: %w", groupID, err)
	}
	return nil
}

func groupPath(groupID string) string {
	return groupsCollection + "/" + groupID
}

func decodeGroup(doc ds.Document) group.Group {
	f := doc.Fields
	g := group.Group{
		ID:            doc.ID(),
		CompetitionID: asString(f["competitionId"]),
		Name:          asString(f["name"]),
		Code:          asString(f["code"]),
		AdminID:       asString(f["adminId"]),
		Participants:  asStringSlice(f["participants"]),
		IsActive:      asBool(f["isActive"]),
		Rules:         group.DefaultRules(),
		CreatedAt:     asTime(f["createdAt"]),
		UpdatedAt:     asTime(f["updatedAt"]),
	}
	if rules := asMap(f["rules"]); rules != nil {
		g.Rules = group.Rules{
			PointsExactScore:     asInt(rules["pointsExactScore"]),
			PointsWinner:         asInt(rules["pointsWinner"]),
			PointsGoalDifference: asInt(rules["pointsGoalDifference"]),
		}
	}
	return g
}

func encodeGroup(g group.Group) map[string]any {
	return map[string]any{
		"competitionId": g.CompetitionID,
		"name":          g.Name,
		"code":          g.Code,
		"adminId":       g.AdminID,
		"participants":  g.Participants,
		"isActive":      g.IsActive,
		"rules": map[string]any{
			"pointsExactScore":     g.Rules.PointsExactScore,
			"pointsWinner":         g.Rules.PointsWinner,
			"pointsGoalDifference": g.Rules.PointsGoalDifference,
		},
		"createdAt": encodeTime(g.CreatedAt),
		"updatedAt": encodeTime(g.UpdatedAt),
	}
}
