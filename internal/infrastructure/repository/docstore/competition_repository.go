package docstore

import (
	"context"
	"fmt"

	"github.com/JuanCGomezS/polla-club/internal/domain/competition"
	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

const competitionsCollection = "competitions"

type CompetitionRepository struct {
	store ds.Store
}

func NewCompetitionRepository(store ds.Store) *CompetitionRepository {
	return &CompetitionRepository{store: store}
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	doc, found, err := r.store.Get(ctx, competitionPath(competitionID))
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("get competition %q: %w", competitionID, err)
	}
	if !found {
		return competition.Competition{}, false, nil
	}
	return decodeCompetition(doc), true, nil
}

func (r *CompetitionRepository) List(ctx context.Context) ([]competition.Competition, error) {
	docs, err := r.store.Query(ctx, competitionsCollection, nil, "startDate")
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}

	out := make([]competition.Competition, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeCompetition(doc))
	}
	return out, nil
}

func competitionPath(competitionID string) string {
	return competitionsCollection + "/" + competitionID
}

func decodeCompetition(doc ds.Document) competition.Competition {
	f := doc.Fields
	return competition.Competition{
		ID:        doc.ID(),
		Name:      asString(f["name"]),
		Type:      asString(f["type"]),
		StartDate: asTime(f["startDate"]),
		EndDate:   asTime(f["endDate"]),
		Status:    competition.NormalizeStatus(asString(f["status"])),
		CreatedAt: asTime(f["createdAt"]),
		UpdatedAt: asTime(f["updatedAt"]),
	}
}

func encodeCompetition(c competition.Competition) map[string]any {
	return map[string]any{
		"name":      c.Name,
		"type":      c.Type,
		"startDate": encodeTime(c.StartDate),
		"endDate":   encodeTime(c.EndDate),
		"status":    c.Status,
		"createdAt": encodeTime(c.CreatedAt),
		"updatedAt": encodeTime(c.UpdatedAt),
	}
}
