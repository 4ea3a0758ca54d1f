package docstore

import (
	"context"
	"fmt"

	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

type MatchRepository struct {
	store ds.Store
}

func NewMatchRepository(store ds.Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByID(ctx context.Context, competitionID, matchID string) (match.Match, bool, error) {
	doc, found, err := r.store.Get(ctx, matchPath(competitionID, matchID))
	if err != nil {
		return match.Match{}, false, fmt.Errorf("get match %q: %w", matchID, err)
	}
	if !found {
		return match.Match{}, false, nil
	}
	return decodeMatch(doc), true, nil
}

func (r *MatchRepository) ListByCompetition(ctx context.Context, competitionID string) ([]match.Match, error) {
	docs, err := r.store.Query(ctx, matchesCollection(competitionID), nil, "scheduledTime")
	if err != nil {
		return nil, fmt.Errorf("list matches for competition %q: %w", competitionID, err)
	}

	out := make([]match.Match, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeMatch(doc))
	}
	return out, nil
}

func (r *MatchRepository) Subscribe(ctx context.Context, competitionID string) (match.Stream, error) {
	sub, err := r.store.Subscribe(ctx, matchesCollection(competitionID), nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe matches for competition %q: %w", competitionID, err)
	}

	stream := &matchStream{sub: sub, updates: make(chan []match.Match, 1)}
	go stream.pump()
	return stream, nil
}

type matchStream struct {
	sub     ds.Subscription
	updates chan []match.Match
}

func (s *matchStream) pump() {
	defer close(s.updates)
	for docs := range s.sub.Updates() {
		matches := make([]match.Match, 0, len(docs))
		for _, doc := range docs {
			matches = append(matches, decodeMatch(doc))
		}
		// Coalesce: replace a pending snapshot instead of blocking the store.
		select {
		case s.updates <- matches:
		default:
			select {
			case <-s.updates:
			default:
			}
			s.updates <- matches
		}
	}
}

func (s *matchStream) Updates() <-chan []match.Match {
	return s.updates
}

func (s *matchStream) Err() error {
	return s.sub.Err()
}

func (s *matchStream) Close() {
	s.sub.Close()
}

func matchesCollection(competitionID string) string {
	return competitionsCollection + "/" + competitionID + "/matches"
}

func matchPath(competitionID, matchID string) string {
	return matchesCollection(competitionID) + "/" + matchID
}

func decodeMatch(doc ds.Document) match.Match {
	f := doc.Fields
	m := match.Match{
		ID:               doc.ID(),
		CompetitionID:    asString(f["competitionId"]),
		MatchNumber:      asInt(f["matchNumber"]),
		Round:            asString(f["round"]),
		Team1:            asString(f["team1"]),
		Team2:            asString(f["team2"]),
		Team1ID:          asString(f["team1Id"]),
		Team2ID:          asString(f["team2Id"]),
		ScheduledTime:    asTime(f["scheduledTime"]),
		StartTime:        asTimePtr(f["startTime"]),
		Status:           match.NormalizeStatus(asString(f["status"])),
		ExtraTime1:       asInt(f["extraTime1"]),
		ExtraTime2:       asInt(f["extraTime2"]),
		HalftimeDuration: asInt(f["halftimeDuration"]),
		CreatedAt:        asTime(f["createdAt"]),
		UpdatedAt:        asTime(f["updatedAt"]),
	}
	if result := asMap(f["result"]); result != nil {
		m.Result = &match.Result{
			Team1Score: asInt(result["team1Score"]),
			Team2Score: asInt(result["team2Score"]),
		}
	}
	return m
}

func encodeMatch(m match.Match) map[string]any {
	fields := map[string]any{
		"competitionId":    m.CompetitionID,
		"matchNumber":      m.MatchNumber,
		"round":            m.Round,
		"team1":            m.Team1,
		"team2":            m.Team2,
		"team1Id":          m.Team1ID,
		"team2Id":          m.Team2ID,
		"scheduledTime":    encodeTime(m.ScheduledTime),
		"startTime":        encodeTimePtr(m.StartTime),
		"status":           match.NormalizeStatus(m.Status),
		"extraTime1":       m.ExtraTime1,
		"extraTime2":       m.ExtraTime2,
		"halftimeDuration": m.HalftimeDuration,
		"createdAt":        encodeTime(m.CreatedAt),
		"updatedAt":        encodeTime(m.UpdatedAt),
	}
	if m.Result != nil {
		fields["result"] = map[string]any{
			"team1Score": m.Result.Team1Score,
			"team2Score": m.Result.Team2Score,
		}
	} else {
		fields["result"] = nil
	}
	return fields
}
