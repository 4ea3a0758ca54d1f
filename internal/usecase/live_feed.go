package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/leaderboard"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
	"github.com/JuanCGomezS/polla-club/internal/platform/metrics"
)

// LeaderboardSnapshot is one full recomputation of a group's standings,
// pushed to live subscribers whenever a match result or prediction changes.
type LeaderboardSnapshot struct {
	GroupID    string
	Entries    []leaderboard.GroupEntry
	ComputedAt time.Time
}

// LeaderboardFeed is a live stream of leaderboard snapshots for one group.
// Updates closes when the feed ends; Err reports why when the cause was a
// failure rather than Close.
type LeaderboardFeed struct {
	updates chan LeaderboardSnapshot
	cancel  context.CancelFunc
	wg      *conc.WaitGroup

	mu        sync.Mutex
	err       error
	closed    bool
	closeOnce sync.Once
}

func (f *LeaderboardFeed) Updates() <-chan LeaderboardSnapshot {
	return f.updates
}

func (f *LeaderboardFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *LeaderboardFeed) Close() {
	f.closeOnce.Do(func() {
		f.cancel()
		f.wg.Wait()
	})
}

func (f *LeaderboardFeed) fail(err error) {
	f.mu.Lock()
	if err != nil && f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
}

// push coalesces so a slow consumer always sees the newest standings.
func (f *LeaderboardFeed) push(snapshot LeaderboardSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.updates <- snapshot:
	default:
		select {
		case <-f.updates:
		default:
		}
		f.updates <- snapshot
	}
}

func (f *LeaderboardFeed) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.updates)
	}
}

type LiveFeedService struct {
	groupRepo      group.Repository
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	boards         *LeaderboardService
	logger         *logging.Logger
	now            func() time.Time
}

func NewLiveFeedService(
	groupRepo group.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	boards *LeaderboardService,
	logger *logging.Logger,
) *LiveFeedService {
	return &LiveFeedService{
		groupRepo:      groupRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		boards:         boards,
		logger:         logger,
		now:            time.Now,
	}
}

// StreamGroupLeaderboard opens a live feed over one group's leaderboard. The
// feed recomputes the full standings on every match or prediction change and
// emits an initial snapshot right away. The prediction listener is only held
// open while the competition has at least one finished match; before that the
// standings are the degenerate all-zero board and prediction edits cannot
// change them.
func (s *LiveFeedService) StreamGroupLeaderboard(ctx context.Context, groupID, userID string) (*LeaderboardFeed, error) {
	ctx, span := startUsecaseSpan(ctx, "LiveFeedService.StreamGroupLeaderboard")
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

	// The feed outlives the opening request; its lifetime is Close.
	feedCtx, cancel := context.WithCancel(context.Background())
	matchStream, err := s.matchRepo.Subscribe(feedCtx, g.CompetitionID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: subscribe matches: %s", ErrDependencyUnavailable, err)
	}

	feed := &LeaderboardFeed{
		updates: make(chan LeaderboardSnapshot, 1),
		cancel:  cancel,
		wg:      conc.NewWaitGroup(),
	}
	feed.wg.Go(func() {
		s.run(feedCtx, feed, g, matchStream)
	})
	return feed, nil
}

func (s *LiveFeedService) run(ctx context.Context, feed *LeaderboardFeed, g group.Group, matchStream match.Stream) {
	metrics.LiveFeedsActive.Inc()
	defer metrics.LiveFeedsActive.Dec()
	defer feed.finish()
	defer matchStream.Close()

	var (
		predStream prediction.Stream
		predCh     <-chan []prediction.Prediction
		matches    []match.Match
		preds      []prediction.Prediction
	)
	defer func() {
		if predStream != nil {
			predStream.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case snapshot, ok := <-matchStream.Updates():
			if !ok {
				feed.fail(matchStream.Err())
				return
			}
			matches = snapshot

			if len(finishedByID(matches)) > 0 && predStream == nil {
				stream, err := s.predictionRepo.Subscribe(ctx, g.ID)
				if err != nil {
					feed.fail(fmt.Errorf("%w: subscribe predictions: %s", ErrDependencyUnavailable, err))
					return
				}
				predStream = stream
				predCh = stream.Updates()
			}
			s.emit(ctx, feed, g, matches, preds)

		case snapshot, ok := <-predCh:
			if !ok {
				feed.fail(predStream.Err())
				return
			}
			preds = snapshot
			s.emit(ctx, feed, g, matches, preds)
		}
	}
}

func (s *LiveFeedService) emit(ctx context.Context, feed *LeaderboardFeed, g group.Group, matches []match.Match, preds []prediction.Prediction) {
	names, err := s.boards.memberNames(ctx, g)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve member names for live feed failed", "group_id", g.ID, "error", err)
		names = map[string]string{}
	}

	entries := leaderboard.BuildGroupLeaderboard(g.MemberIDs(), names, preds, finishedByID(matches), g.Rules)
	feed.push(LeaderboardSnapshot{
		GroupID:    g.ID,
		Entries:    entries,
		ComputedAt: s.now().UTC(),
	})
	metrics.LiveSnapshotsEmitted.Inc()
}
