package usecase

import (
	"testing"
	"time"

	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
	dsmemory "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore/memory"
	repo "github.com/JuanCGomezS/polla-club/internal/infrastructure/repository/docstore"
	"github.com/JuanCGomezS/polla-club/internal/platform/cache"
	idgen "github.com/JuanCGomezS/polla-club/internal/platform/id"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
)

// testEnv wires the services over a seeded in-memory store, the same way the
// app composes them in dev mode.
type testEnv struct {
	store           *dsmemory.Store
	competitionRepo *repo.CompetitionRepository
	matchRepo       *repo.MatchRepository
	groupRepo       *repo.GroupRepository
	predictionRepo  *repo.PredictionRepository
	userRepo        *repo.UserRepository

	groups       *GroupService
	predictions  *PredictionService
	leaderboards *LeaderboardService
	feeds        *LiveFeedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := dsmemory.NewStore()
	if err := repo.BootstrapSeed(t.Context(), store); err != nil {
		t.Fatalf("bootstrap seed: %v", err)
	}

	env := &testEnv{
		store:           store,
		competitionRepo: repo.NewCompetitionRepository(store),
		matchRepo:       repo.NewMatchRepository(store),
		groupRepo:       repo.NewGroupRepository(store),
		predictionRepo:  repo.NewPredictionRepository(store),
		userRepo:        repo.NewUserRepository(store),
	}

	env.groups = NewGroupService(env.competitionRepo, env.groupRepo, env.userRepo, idgen.NewRandomGenerator())
	env.predictions = NewPredictionService(env.groupRepo, env.matchRepo, env.predictionRepo)
	env.leaderboards = NewLeaderboardService(
		env.groupRepo,
		env.matchRepo,
		env.predictionRepo,
		env.userRepo,
		cache.NewStore(time.Minute),
		logging.NewNop(),
	)
	env.feeds = NewLiveFeedService(env.groupRepo, env.matchRepo, env.predictionRepo, env.leaderboards, logging.NewNop())

	return env
}

// createGroup opens a pool on the seeded competition with demo-admin as the
// creator and joins the given extra members through their invite code.
func (env *testEnv) createGroup(t *testing.T, extraMembers ...string) string {
	t.Helper()

	g, err := env.groups.CreateGroup(t.Context(), CreateGroupInput{
		UserID:        "demo-admin",
		CompetitionID: "mundial-2026",
		Name:          "Polla de la oficina",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	for _, userID := range extraMembers {
		if _, err := env.groups.JoinByCode(t.Context(), JoinGroupInput{UserID: userID, Code: g.Code}); err != nil {
			t.Fatalf("join group as %s: %v", userID, err)
		}
	}
	return g.ID
}

// finishMatch flips a seeded match to finished with the given score, writing
// through the raw store the way the external result feed would.
func (env *testEnv) finishMatch(t *testing.T, matchID string, team1Score, team2Score int) {
	t.Helper()

	err := env.store.Update(t.Context(), "competitions/mundial-2026/matches/"+matchID, map[string]any{
		"status": "finished",
		"result": map[string]any{
			"team1Score": team1Score,
			"team2Score": team2Score,
		},
	})
	if err != nil {
		t.Fatalf("finish match %s: %v", matchID, err)
	}
}

// startMatch flips a seeded match to live.
func (env *testEnv) startMatch(t *testing.T, matchID string, kickoff time.Time) {
	t.Helper()

	err := env.store.Update(t.Context(), "competitions/mundial-2026/matches/"+matchID, map[string]any{
		"status":    "live",
		"startTime": ds.FormatTime(kickoff),
	})
	if err != nil {
		t.Fatalf("start match %s: %v", matchID, err)
	}
}
