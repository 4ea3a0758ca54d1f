package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/JuanCGomezS/polla-club/internal/domain/competition"
	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/notification"
	"github.com/JuanCGomezS/polla-club/internal/domain/user"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
	"github.com/JuanCGomezS/polla-club/internal/platform/metrics"
)

const (
	defaultNotifyLeadWindow = 30 * time.Minute
	notifyWorkerCount       = 8
)

// NotifyResult summarizes one notifier run.
type NotifyResult struct {
	MatchesFound  int
	UsersNotified int
	TokensSent    int
	TokensFailed  int
	TokensPruned  int
}

type NotificationService struct {
	competitionRepo competition.Repository
	matchRepo       match.Repository
	groupRepo       group.Repository
	userRepo        user.Repository
	sender          notification.Sender
	logger          *logging.Logger
	leadWindow      time.Duration
	now             func() time.Time
}

func NewNotificationService(
	competitionRepo competition.Repository,
	matchRepo match.Repository,
	groupRepo group.Repository,
	userRepo user.Repository,
	sender notification.Sender,
	logger *logging.Logger,
	leadWindow time.Duration,
) *NotificationService {
	if leadWindow <= 0 {
		leadWindow = defaultNotifyLeadWindow
	}
	return &NotificationService{
		competitionRepo: competitionRepo,
		matchRepo:       matchRepo,
		groupRepo:       groupRepo,
		userRepo:        userRepo,
		sender:          sender,
		logger:          logger,
		leadWindow:      leadWindow,
		now:             time.Now,
	}
}

// NotifyUpcomingMatches pushes a reminder for every scheduled match kicking
// off within the lead window, to every member of every active group on the
// match's competition. A user in several groups gets one message per match.
// Tokens the sender reports invalid are pruned from the user's registry.
// Delivery is at-least-once across runs; the caller's cadence should match
// the lead window.
func (s *NotificationService) NotifyUpcomingMatches(ctx context.Context) (NotifyResult, error) {
	ctx, span := startUsecaseSpan(ctx, "NotificationService.NotifyUpcomingMatches")
	defer span.End()

	competitions, err := s.competitionRepo.List(ctx)
	if err != nil {
		return NotifyResult{}, fmt.Errorf("list competitions: %w", err)
	}

	now := s.now().UTC()
	var result NotifyResult
	var tasks []sendTask

	for _, comp := range competitions {
		if competition.NormalizeStatus(comp.Status) != competition.StatusActive {
			continue
		}

		matches, err := s.matchRepo.ListByCompetition(ctx, comp.ID)
		if err != nil {
			return result, fmt.Errorf("list matches for competition %s: %w", comp.ID, err)
		}
		upcoming := upcomingWithin(matches, now, s.leadWindow)
		if len(upcoming) == 0 {
			continue
		}
		result.MatchesFound += len(upcoming)

		groups, err := s.groupRepo.ListActiveByCompetition(ctx, comp.ID)
		if err != nil {
			return result, fmt.Errorf("list active groups for competition %s: %w", comp.ID, err)
		}
		memberIDs := uniqueMemberIDs(groups)
		if len(memberIDs) == 0 {
			continue
		}

		users, err := s.userRepo.BatchGet(ctx, memberIDs)
		if err != nil {
			return result, fmt.Errorf("batch get users: %w", err)
		}

		for _, m := range upcoming {
			msg := upcomingMatchMessage(m)
			for _, userID := range memberIDs {
				u, ok := users[userID]
				if !ok || len(u.DeviceTokens) == 0 {
					continue
				}
				tasks = append(tasks, sendTask{userID: u.ID, tokens: u.DeviceTokens, msg: msg})
			}
		}
	}

	if len(tasks) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(notifyWorkerCount)
	if err != nil {
		return result, fmt.Errorf("create notification worker pool: %w", err)
	}
	defer pool.Release()

	if err := s.dispatchSends(ctx, pool, tasks, &result); err != nil {
		return result, err
	}
	return result, nil
}

type sendTask struct {
	userID string
	tokens []string
	msg    notification.Message
}

// taskSubmitter is the ants pool surface the dispatcher depends on.
type taskSubmitter interface {
	Submit(task func()) error
}

func (s *NotificationService) dispatchSends(ctx context.Context, pool taskSubmitter, tasks []sendTask, result *NotifyResult) error {
	var (
		sent      atomic.Int32
		failed    atomic.Int32
		pruned    atomic.Int32
		notifiedM sync.Mutex
		notified  = map[string]struct{}{}
		workers   sync.WaitGroup
	)

	var submitErr error
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			reports, err := s.sender.Send(ctx, task.tokens, task.msg)
			if err != nil {
				failed.Add(int32(len(task.tokens)))
				metrics.NotificationsSent.WithLabelValues("error").Add(float64(len(task.tokens)))
				s.logger.WarnContext(ctx, "push send failed", "user_id", task.userID, "error", err)
				return
			}

			var invalid []string
			for _, report := range reports {
				switch {
				case report.OK:
					sent.Add(1)
					metrics.NotificationsSent.WithLabelValues("ok").Inc()
				case report.Invalid:
					invalid = append(invalid, report.Token)
					failed.Add(1)
					metrics.NotificationsSent.WithLabelValues("invalid").Inc()
				default:
					failed.Add(1)
					metrics.NotificationsSent.WithLabelValues("error").Inc()
				}
			}

			if len(invalid) > 0 {
				if err := s.userRepo.RemoveDeviceTokens(ctx, task.userID, invalid); err != nil {
					s.logger.WarnContext(ctx, "prune invalid device tokens failed", "user_id", task.userID, "error", err)
				} else {
					pruned.Add(int32(len(invalid)))
				}
			}

			notifiedM.Lock()
			notified[task.userID] = struct{}{}
			notifiedM.Unlock()
		}); err != nil {
			workers.Done()
			submitErr = fmt.Errorf("submit send to worker pool: %w", err)
			break
		}
	}

	// In-flight sends must drain before the caller releases the pool, even
	// when a submit failed partway through.
	workers.Wait()

	result.UsersNotified = len(notified)
	result.TokensSent = int(sent.Load())
	result.TokensFailed = int(failed.Load())
	result.TokensPruned = int(pruned.Load())
	return submitErr
}

func upcomingWithin(matches []match.Match, now time.Time, window time.Duration) []match.Match {
	var out []match.Match
	for _, m := range matches {
		if !m.IsScheduled() {
			continue
		}
		kickoff := m.Kickoff()
		if kickoff.Before(now) || kickoff.After(now.Add(window)) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kickoff().Before(out[j].Kickoff())
	})
	return out
}

func uniqueMemberIDs(groups []group.Group) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range groups {
		for _, id := range g.MemberIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func upcomingMatchMessage(m match.Match) notification.Message {
	return notification.Message{
		Title: "¡Tu partido está por comenzar!",
		Body:  fmt.Sprintf("%s vs %s comienza pronto. ¡Haz tu predicción!", m.Team1, m.Team2),
		Data: map[string]string{
			"matchId":       m.ID,
			"competitionId": m.CompetitionID,
		},
	}
}
