package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/competition"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/user"
	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

// BootstrapSeed loads a demo competition with a fixture list and a few user
// profiles when the store is empty. It is a no-op on a populated store.
func BootstrapSeed(ctx context.Context, store ds.Store) error {
	existing, err := store.Query(ctx, competitionsCollection, nil, "")
	if err != nil {
		return fmt.Errorf("check competitions for bootstrap seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	writes := make([]ds.Write, 0, 16)

	for _, c := range SeedCompetitions() {
		c.CreatedAt = now
		c.UpdatedAt = now
		writes = append(writes, ds.Write{
			Kind:   ds.WriteSet,
			Path:   competitionPath(c.ID),
			Fields: encodeCompetition(c),
		})
	}

	for _, m := range SeedMatches() {
		m.CreatedAt = now
		m.UpdatedAt = now
		writes = append(writes, ds.Write{
			Kind:   ds.WriteSet,
			Path:   matchPath(m.CompetitionID, m.ID),
			Fields: encodeMatch(m),
		})
	}

	for _, u := range SeedUsers() {
		u.CreatedAt = now
		writes = append(writes, ds.Write{
			Kind:   ds.WriteSet,
			Path:   userPath(u.ID),
			Fields: encodeUser(u),
		})
	}

	if err := ds.CommitInChunks(ctx, store, writes); err != nil {
		return fmt.Errorf("write bootstrap seed: %w", err)
	}
	return nil
}

func SeedCompetitions() []competition.Competition {
	return []competition.Competition{
		{
			ID:        "mundial-2026",
			Name:      "Copa Mundial 2026",
			Type:      competition.TypeWorldCup,
			StartDate: time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC),
			Status:    competition.StatusActive,
		},
	}
}

func SeedMatches() []match.Match {
	kickoff := func(day, hour int) time.Time {
		return time.Date(2026, 6, day, hour, 0, 0, 0, time.UTC)
	}
	return []match.Match{
		{
			ID:            "m-001",
			CompetitionID: "mundial-2026",
			MatchNumber:   1,
			Round:         "Fase de grupos",
			Team1:         "México",
			Team2:         "Sudáfrica",
			Team1ID:       "mex",
			Team2ID:       "rsa",
			ScheduledTime: kickoff(11, 19),
			Status:        match.StatusScheduled,
		},
		{
			ID:            "m-002",
			CompetitionID: "mundial-2026",
			MatchNumber:   2,
			Round:         "Fase de grupos",
			Team1:         "Canadá",
			Team2:         "Uruguay",
			Team1ID:       "can",
			Team2ID:       "uru",
			ScheduledTime: kickoff(12, 16),
			Status:        match.StatusScheduled,
		},
		{
			ID:            "m-003",
			CompetitionID: "mundial-2026",
			MatchNumber:   3,
			Round:         "Fase de grupos",
			Team1:         "Estados Unidos",
			Team2:         "Colombia",
			Team1ID:       "usa",
			Team2ID:       "col",
			ScheduledTime: kickoff(12, 19),
			Status:        match.StatusScheduled,
		},
		{
			ID:            "m-004",
			CompetitionID: "mundial-2026",
			MatchNumber:   4,
			Round:         "Fase de grupos",
			Team1:         "Argentina",
			Team2:         "Marruecos",
			Team1ID:       "arg",
			Team2ID:       "mar",
			ScheduledTime: kickoff(13, 16),
			Status:        match.StatusScheduled,
		},
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: "demo-admin", DisplayName: "Juan Gómez", Email: "juan@example.com"},
		{ID: "demo-user-1", DisplayName: "Laura Pérez", Email: "laura@example.com"},
		{ID: "demo-user-2", DisplayName: "Andrés Rojas", Email: "andres@example.com"},
	}
}
