package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
	idgen "github.com/JuanCGomezS/polla-club/internal/platform/id"
)

// SavePredictionInput is the incoming payload for create/update prediction.
type SavePredictionInput struct {
	GroupID    string
	UserID     string
	MatchID    string
	Team1Score int
	Team2Score int
}

type PredictionService struct {
	groupRepo      group.Repository
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	now            func() time.Time
}

func NewPredictionService(
	groupRepo group.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
) *PredictionService {
	return &PredictionService{
		groupRepo:      groupRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		now:            time.Now,
	}
}

// SavePrediction creates or rewrites the caller's prediction for one match.
// The prediction ID is derived from (group, user, match), so saving twice
// never produces a duplicate record. Editing stops the moment the match
// leaves the scheduled state.
func (s *PredictionService) SavePrediction(ctx context.Context, input SavePredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.SavePrediction")
	defer span.End()

	input.GroupID = strings.TrimSpace(input.GroupID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.MatchID = strings.TrimSpace(input.MatchID)

	if input.GroupID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if input.UserID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.Team1Score < 0 || input.Team2Score < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
	}

	g, m, err := s.resolveGroupMatch(ctx, input.GroupID, input.UserID, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if !m.IsScheduled() {
		return prediction.Prediction{}, fmt.Errorf("%w: match %s is %s", ErrMatchLocked, m.ID, match.NormalizeStatus(m.Status))
	}

	now := s.now().UTC()
	existing, exists, err := s.predictionRepo.GetByUserAndMatch(ctx, g.ID, input.UserID, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get existing prediction: %w", err)
	}

	if exists {
		err := s.predictionRepo.UpdateScores(ctx, g.ID, existing.ID, input.Team1Score, input.Team2Score, now)
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("update prediction scores: %w", err)
		}
		existing.Team1Score = input.Team1Score
		existing.Team2Score = input.Team2Score
		existing.SubmittedAt = now
		existing.Points = nil
		existing.Breakdown = nil
		existing.CalculatedAt = nil
		return existing, nil
	}

	p := prediction.Prediction{
		ID:          idgen.Composite(g.ID, input.UserID, input.MatchID),
		GroupID:     g.ID,
		UserID:      input.UserID,
		MatchID:     input.MatchID,
		Team1Score:  input.Team1Score,
		Team2Score:  input.Team2Score,
		SubmittedAt: now,
	}
	if err := s.predictionRepo.Create(ctx, g.ID, p); err != nil {
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}
	return p, nil
}

// GetUserPrediction returns the caller's prediction for one match, reporting
// existence separately so a missing prediction is not an error.
func (s *PredictionService) GetUserPrediction(ctx context.Context, groupID, userID, matchID string) (prediction.Prediction, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.GetUserPrediction")
	defer span.End()

	g, found, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("get group: %w", err)
	}
	if !found {
		return prediction.Prediction{}, false, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !g.HasMember(userID) {
		return prediction.Prediction{}, false, fmt.Errorf("%w: user %s is not a member of group %s", ErrUnauthorized, userID, groupID)
	}

	p, exists, err := s.predictionRepo.GetByUserAndMatch(ctx, groupID, userID, matchID)
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}
	return p, exists, nil
}

// ListUserPredictions returns every prediction the caller has made in one
// group.
func (s *PredictionService) ListUserPredictions(ctx context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.ListUserPredictions")
	defer span.End()

	g, found, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !g.HasMember(userID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrUnauthorized, userID, groupID)
	}

	preds, err := s.predictionRepo.ListByUser(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return preds, nil
}

func (s *PredictionService) resolveGroupMatch(ctx context.Context, groupID, userID, matchID string) (group.Group, match.Match, error) {
	g, found, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return group.Group{}, match.Match{}, fmt.Errorf("get group: %w", err)
	}
	if !found {
		return group.Group{}, match.Match{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !g.HasMember(userID) {
		return group.Group{}, match.Match{}, fmt.Errorf("%w: user %s is not a member of group %s", ErrUnauthorized, userID, groupID)
	}

	m, found, err := s.matchRepo.GetByID(ctx, g.CompetitionID, matchID)
	if err != nil {
		return group.Group{}, match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return group.Group{}, match.Match{}, fmt.Errorf("%w: match %s in competition %s", ErrNotFound, matchID, g.CompetitionID)
	}
	return g, m, nil
}
