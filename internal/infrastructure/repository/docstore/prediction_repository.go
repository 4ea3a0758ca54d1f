package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

type PredictionRepository struct {
	store ds.Store
}

func NewPredictionRepository(store ds.Store) *PredictionRepository {
	return &PredictionRepository{store: store}
}

func (r *PredictionRepository) GetByUserAndMatch(ctx context.Context, groupID, userID, matchID string) (prediction.Prediction, bool, error) {
	docs, err := r.store.Query(ctx, predictionsCollection(groupID), []ds.Filter{
		ds.Where("userId", ds.OpEqual, userID),
		ds.Where("matchId", ds.OpEqual, matchID),
	}, "")
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("get prediction for user %q match %q: %w", userID, matchID, err)
	}
	if len(docs) == 0 {
		return prediction.Prediction{}, false, nil
	}
	return decodePrediction(groupID, docs[0]), true, nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, groupID, matchID string) ([]prediction.Prediction, error) {
	docs, err := r.store.Query(ctx, predictionsCollection(groupID), []ds.Filter{
		ds.Where("matchId", ds.OpEqual, matchID),
	}, "")
	if err != nil {
		return nil, fmt.Errorf("list predictions for match %q: %w", matchID, err)
	}
	return decodePredictions(groupID, docs), nil
}

func (r *PredictionRepository) ListByUser(ctx context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	docs, err := r.store.Query(ctx, predictionsCollection(groupID), []ds.Filter{
		ds.Where("userId", ds.OpEqual, userID),
	}, "")
	if err != nil {
		return nil, fmt.Errorf("list predictions for user %q: %w", userID, err)
	}
	return decodePredictions(groupID, docs), nil
}

func (r *PredictionRepository) ListByGroup(ctx context.Context, groupID string) ([]prediction.Prediction, error) {
	docs, err := r.store.Query(ctx, predictionsCollection(groupID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("list predictions for group %q: %w", groupID, err)
	}
	return decodePredictions(groupID, docs), nil
}

func (r *PredictionRepository) Create(ctx context.Context, groupID string, p prediction.Prediction) error {
	if err := r.store.Set(ctx, predictionPath(groupID, p.ID), encodePrediction(p)); err != nil {
		return fmt.Errorf("create prediction %q: %w", p.ID, err)
	}
	return nil
}

func (r *PredictionRepository) UpdateScores(ctx context.Context, groupID, predictionID string, team1Score, team2Score int, submittedAt time.Time) error {
	err := r.store.Update(ctx, predictionPath(groupID, predictionID), map[string]any{
		"team1Score":   team1Score,
		"team2Score":   team2Score,
		"submittedAt":  encodeTime(submittedAt),
		"points":       nil,
		"breakdown":    nil,
		"calculatedAt": nil,
	})
	if err != nil {
		return fmt.Errorf("update prediction %q: %w", predictionID, err)
	}
	return nil
}

func (r *PredictionRepository) CachePoints(ctx context.Context, groupID, predictionID string, points int, breakdown prediction.Breakdown, calculatedAt time.Time) error {
	err := r.store.Update(ctx, predictionPath(groupID, predictionID), map[string]any{
		"points": points,
		"breakdown": map[string]any{
			"exactScore":     breakdown.ExactScore,
			"winner":         breakdown.Winner,
			"goalDifference": breakdown.GoalDifference,
		},
		"calculatedAt": encodeTime(calculatedAt),
	})
	if err != nil {
		return fmt.Errorf("cache points for prediction %q: %w", predictionID, err)
	}
	return nil
}

func (r *PredictionRepository) Subscribe(ctx context.Context, groupID string) (prediction.Stream, error) {
	sub, err := r.store.Subscribe(ctx, predictionsCollection(groupID), nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe predictions for group %q: %w", groupID, err)
	}

	stream := &predictionStream{groupID: groupID, sub: sub, updates: make(chan []prediction.Prediction, 1)}
	go stream.pump()
	return stream, nil
}

type predictionStream struct {
	groupID string
	sub     ds.Subscription
	updates chan []prediction.Prediction
}

func (s *predictionStream) pump() {
	defer close(s.updates)
	for docs := range s.sub.Updates() {
		preds := decodePredictions(s.groupID, docs)
		select {
		case s.updates <- preds:
		default:
			select {
			case <-s.updates:
			default:
			}
			s.updates <- preds
		}
	}
}

func (s *predictionStream) Updates() <-chan []prediction.Prediction {
	return s.updates
}

func (s *predictionStream) Err() error {
	return s.sub.Err()
}

func (s *predictionStream) Close() {
	s.sub.Close()
}

func predictionsCollection(groupID string) string {
	return groupsCollection + "/" + groupID + "/predictions"
}

func predictionPath(groupID, predictionID string) string {
	return predictionsCollection(groupID) + "/" + predictionID
}

func decodePredictions(groupID string, docs []ds.Document) []prediction.Prediction {
	out := make([]prediction.Prediction, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodePrediction(groupID, doc))
	}
	return out
}

func decodePrediction(groupID string, doc ds.Document) prediction.Prediction {
	f := doc.Fields
	p := prediction.Prediction{
		ID:           doc.ID(),
		GroupID:      groupID,
		UserID:       asString(f["userId"]),
		MatchID:      asString(f["matchId"]),
		Team1Score:   asInt(f["team1Score"]),
		Team2Score:   asInt(f["team2Score"]),
		SubmittedAt:  asTime(f["submittedAt"]),
		Points:       asIntPtr(f["points"]),
		CalculatedAt: asTimePtr(f["calculatedAt"]),
	}
	if breakdown := asMap(f["breakdown"]); breakdown != nil {
		p.Breakdown = &prediction.Breakdown{
			ExactScore:     asInt(breakdown["exactScore"]),
			Winner:         asInt(breakdown["winner"]),
			GoalDifference: asInt(breakdown["goalDifference"]),
		}
	}
	return p
}

func encodePrediction(p prediction.Prediction) map[string]any {
	fields := map[string]any{
		"userId":       p.UserID,
		"matchId":      p.MatchID,
		"team1Score":   p.Team1Score,
		"team2Score":   p.Team2Score,
		"submittedAt":  encodeTime(p.SubmittedAt),
		"points":       nil,
		"breakdown":    nil,
		"calculatedAt": nil,
	}
	if p.Points != nil {
		fields["points"] = *p.Points
	}
	if p.Breakdown != nil {
		fields["breakdown"] = map[string]any{
			"exactScore":     p.Breakdown.ExactScore,
			"winner":         p.Breakdown.Winner,
			"goalDifference": p.Breakdown.GoalDifference,
		}
	}
	if p.CalculatedAt != nil {
		fields["calculatedAt"] = encodeTime(*p.CalculatedAt)
	}
	return fields
}
