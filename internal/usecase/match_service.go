package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/competition"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
)

// MatchView is a match enriched with its computed clock. The clock is only
// present while the match is live.
type MatchView struct {
	Match        match.Match
	Clock        *match.Clock
	ClockDisplay string
}

type MatchService struct {
	competitionRepo competition.Repository
	matchRepo       match.Repository
	now             func() time.Time
}

func NewMatchService(competitionRepo competition.Repository, matchRepo match.Repository) *MatchService {
	return &MatchService{
		competitionRepo: competitionRepo,
		matchRepo:       matchRepo,
		now:             time.Now,
	}
}

func (s *MatchService) ListCompetitions(ctx context.Context) ([]competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ListCompetitions")
	defer span.End()

	competitions, err := s.competitionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return competitions, nil
}

func (s *MatchService) ListMatches(ctx context.Context, competitionID string) ([]MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ListMatches")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return nil, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	if _, found, err := s.competitionRepo.GetByID(ctx, competitionID); err != nil {
		return nil, fmt.Errorf("get competition: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: competition %s", ErrNotFound, competitionID)
	}

	matches, err := s.matchRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	now := s.now()
	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, s.matchView(m, now))
	}
	return views, nil
}

func (s *MatchService) GetMatch(ctx context.Context, competitionID, matchID string) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.GetMatch")
	defer span.End()

	m, found, err := s.matchRepo.GetByID(ctx, competitionID, matchID)
	if err != nil {
		return MatchView{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return MatchView{}, fmt.Errorf("%w: match %s in competition %s", ErrNotFound, matchID, competitionID)
	}
	return s.matchView(m, s.now()), nil
}

func (s *MatchService) matchView(m match.Match, now time.Time) MatchView {
	view := MatchView{Match: m}
	if m.IsLive() {
		clock := match.ComputeClock(m, now)
		view.Clock = &clock
		view.ClockDisplay = match.FormatClock(clock)
	}
	return view
}
