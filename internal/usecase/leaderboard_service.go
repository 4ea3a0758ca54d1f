package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/leaderboard"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
	"github.com/JuanCGomezS/polla-club/internal/domain/scoring"
	"github.com/JuanCGomezS/polla-club/internal/domain/user"
	"github.com/JuanCGomezS/polla-club/internal/platform/cache"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
)

type LeaderboardService struct {
	groupRepo      group.Repository
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	userRepo       user.Repository
	nameCache      *cache.Store
	logger         *logging.Logger
	now            func() time.Time
}

func NewLeaderboardService(
	groupRepo group.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	userRepo user.Repository,
	nameCache *cache.Store,
	logger *logging.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		groupRepo:      groupRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		nameCache:      nameCache,
		logger:         logger,
		now:            time.Now,
	}
}

// MatchLeaderboard ranks the group's predictions on one match. Before the
// match has a result the leaderboard is empty. Points computed here are
// written back onto finished-match predictions so later reads skip the
// recompute; a failed write-back only costs that optimization.
func (s *LeaderboardService) MatchLeaderboard(ctx context.Context, groupID, userID, matchID string) ([]leaderboard.MatchEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.MatchLeaderboard")
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

	m, found, err := s.matchRepo.GetByID(ctx, g.CompetitionID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: match %s in competition %s", ErrNotFound, matchID, g.CompetitionID)
	}
	if m.Result == nil {
		return []leaderboard.MatchEntry{}, nil
	}

	preds, err := s.predictionRepo.ListByMatch(ctx, groupID, matchID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	names, err := s.memberNames(ctx, g)
	if err != nil {
		return nil, err
	}

	if m.IsFinished() {
		s.fillPointsCache(ctx, g, m, preds)
	}
	return leaderboard.BuildMatchLeaderboard(preds, m.Result, g.Rules, names), nil
}

// GroupLeaderboard ranks every group member by total points across the
// competition's finished matches.
func (s *LeaderboardService) GroupLeaderboard(ctx context.Context, groupID, userID string) ([]leaderboard.GroupEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.GroupLeaderboard")
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

	matches, err := s.matchRepo.ListByCompetition(ctx, g.CompetitionID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	finished := finishedByID(matches)

	preds, err := s.predictionRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	names, err := s.memberNames(ctx, g)
	if err != nil {
		return nil, err
	}
	return leaderboard.BuildGroupLeaderboard(g.MemberIDs(), names, preds, finished, g.Rules), nil
}

// fillPointsCache persists freshly computed points. Failures are logged and
// swallowed: the next read recomputes.
func (s *LeaderboardService) fillPointsCache(ctx context.Context, g group.Group, m match.Match, preds []prediction.Prediction) {
	now := s.now().UTC()
	for i := range preds {
		if preds[i].Points != nil {
			continue
		}
		points, breakdown := scoring.CalculatePoints(preds[i], m.Result, g.Rules)
		if err := s.predictionRepo.CachePoints(ctx, g.ID, preds[i].ID, points, breakdown, now); err != nil {
			s.logger.WarnContext(ctx, "cache prediction points failed",
				"group_id", g.ID, "prediction_id", preds[i].ID, "error", err)
			continue
		}
		preds[i].Points = &points
		preds[i].Breakdown = &breakdown
		preds[i].CalculatedAt = &now
	}
}

func (s *LeaderboardService) memberNames(ctx context.Context, g group.Group) (map[string]string, error) {
	value, err := s.nameCache.GetOrLoad(ctx, "group-member-names:"+g.ID, func(ctx context.Context) (any, error) {
		users, err := s.userRepo.BatchGet(ctx, g.MemberIDs())
		if err != nil {
			return nil, fmt.Errorf("batch get users: %w", err)
		}
		names := make(map[string]string, len(users))
		for id, u := range users {
			names[id] = u.DisplayName
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}

	names, ok := value.(map[string]string)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T for group member names", value)
	}
	return names, nil
}

func finishedByID(matches []match.Match) map[string]match.Match {
	finished := make(map[string]match.Match, len(matches))
	for _, m := range matches {
		if m.IsFinished() {
			finished[m.ID] = m
		}
	}
	return finished
}
