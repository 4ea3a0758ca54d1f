package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
	"github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore/memory"
)

func TestGroupRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGroupRepository(memory.NewStore())

	g := group.Group{
		ID:            "g1",
		CompetitionID: "mundial-2026",
		Name:          "Polla de la oficina",
		Code:          "ABC123",
		AdminID:       "u-admin",
		Participants:  []string{"u-admin", "u1"},
		IsActive:      true,
		Rules:         group.Rules{PointsExactScore: 5, PointsWinner: 2, PointsGoalDifference: 1},
		CreatedAt:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, g))

	got, found, err := repo.GetByID(ctx, "g1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, g, got)

	byCode, found, err := repo.GetByCode(ctx, "ABC123")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "g1", byCode.ID)

	_, found, err = repo.GetByCode(ctx, "ZZZZZZ")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.AddParticipant(ctx, "g1", "u2"))
	// Adding the same user twice keeps the list deduplicated.
	require.NoError(t, repo.AddParticipant(ctx, "g1", "u2"))

	got, _, err = repo.GetByID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"u-admin", "u1", "u2"}, got.Participants)

	mine, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	active, err := repo.ListActiveByCompetition(ctx, "mundial-2026")
	require.NoError(t, err)
	require.Len(t, active, 1)

	none, err := repo.ListActiveByCompetition(ctx, "otra-copa")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestPredictionRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPredictionRepository(memory.NewStore())

	submitted := time.Date(2026, 6, 10, 9, 30, 0, 0, time.UTC)
	p := prediction.Prediction{
		ID:          "p1",
		GroupID:     "g1",
		UserID:      "u1",
		MatchID:     "m-001",
		Team1Score:  2,
		Team2Score:  1,
		SubmittedAt: submitted,
	}
	require.NoError(t, repo.Create(ctx, "g1", p))

	got, found, err := repo.GetByUserAndMatch(ctx, "g1", "u1", "m-001")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, p, got)
	require.Nil(t, got.Points)

	calculated := submitted.Add(3 * time.Hour)
	breakdown := prediction.Breakdown{ExactScore: 5, Winner: 2, GoalDifference: 1}
	require.NoError(t, repo.CachePoints(ctx, "g1", "p1", 8, breakdown, calculated))

	got, _, err = repo.GetByUserAndMatch(ctx, "g1", "u1", "m-001")
	require.NoError(t, err)
	require.NotNil(t, got.Points)
	require.Equal(t, 8, *got.Points)
	require.Equal(t, &breakdown, got.Breakdown)
	require.Equal(t, &calculated, got.CalculatedAt)

	// Rewriting the scores clears the cached points.
	require.NoError(t, repo.UpdateScores(ctx, "g1", "p1", 0, 0, submitted.Add(time.Hour)))
	got, _, err = repo.GetByUserAndMatch(ctx, "g1", "u1", "m-001")
	require.NoError(t, err)
	require.Zero(t, got.Team1Score)
	require.Nil(t, got.Points)
	require.Nil(t, got.Breakdown)
	require.Nil(t, got.CalculatedAt)

	_, found, err = repo.GetByUserAndMatch(ctx, "g1", "u1", "m-999")
	require.NoError(t, err)
	require.False(t, found)
}

func TestBootstrapSeed_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, BootstrapSeed(ctx, store))
	require.NoError(t, BootstrapSeed(ctx, store))

	competitions, err := NewCompetitionRepository(store).List(ctx)
	require.NoError(t, err)
	require.Len(t, competitions, 1)

	matches, err := NewMatchRepository(store).ListByCompetition(ctx, competitions[0].ID)
	require.NoError(t, err)
	require.Len(t, matches, len(SeedMatches()))

	users, err := NewUserRepository(store).BatchGet(ctx, []string{"demo-admin", "demo-user-1", "missing"})
	require.NoError(t, err)
	require.Len(t, users, 2)
}
