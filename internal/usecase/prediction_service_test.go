package usecase

import (
	"errors"
	"testing"
	"time"
)

func TestPredictionService_SaveAndGet(t *testing.T) {
	env := newTestEnv(t)
	groupID := env.createGroup(t, "demo-user-1")

	saved, err := env.predictions.SavePrediction(t.Context(), SavePredictionInput{
		GroupID:    groupID,
		UserID:     "demo-user-1",
		MatchID:    "m-001",
		Team1Score: 2,
		Team2Score: 0,
	})
	if err != nil {
		t.Fatalf("save prediction: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated prediction id")
	}
	if saved.Team1Score != 2 || saved.Team2Score != 0 {
		t.Fatalf("unexpected scores: %d-%d", saved.Team1Score, saved.Team2Score)
	}

	got, exists, err := env.predictions.GetUserPrediction(t.Context(), groupID, "demo-user-1", "m-001")
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}
	if !exists {
		t.Fatalf("expected prediction to exist")
	}
	if got.ID != saved.ID {
		t.Fatalf("expected id %s, got %s", saved.ID, got.ID)
	}
}

func TestPredictionService_SaveTwiceUpdatesInPlace(t *testing.T) {
	env := newTestEnv(t)
	groupID := env.createGroup(t)

	first, err := env.predictions.SavePrediction(t.Context(), SavePredictionInput{
		GroupID: groupID, UserID: "demo-admin", MatchID: "m-001", Team1Score: 1, Team2Score: 1,
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	second, err := env.predictions.SavePrediction(t.Context(), SavePredictionInput{
		GroupID: groupID, UserID: "demo-admin", MatchID: "m-001", Team1Score: 3, Team2Score: 0,
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected stable prediction id, got %s then %s", first.ID, second.ID)
	}

	all, err := env.predictions.ListUserPredictions(t.Context(), groupID, "demo-admin")
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one prediction record, got %d", len(all))
	}
	if all[0].Team1Score != 3 || all[0].Team2Score != 0 {
		t.Fatalf("expected updated scores, got %d-%d", all[0].Team1Score, all[0].Team2Score)
	}
}

func TestPredictionService_RejectsNonMember(t *testing.T) {
	env := newTestEnv(t)
	groupID := env.createGroup(t)

	_, err := env.predictions.SavePrediction(t.Context(), SavePredictionInput{
		GroupID: groupID, UserID: "demo-user-2", MatchID: "m-001", Team1Score: 1, Team2Score: 0,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPredictionService_RejectsLockedMatch(t *testing.T) {
	env := newTestEnv(t)
	groupID := env.createGroup(t)
	env.startMatch(t, "m-001", time.Date(2026, 6, 11, 19, 0, 0, 0, time.UTC))

	_, err := env.predictions.SavePrediction(t.Context(), SavePredictionInput{
		GroupID: groupID, UserID: "demo-admin", MatchID: "m-001", Team1Score: 1, Team2Score: 0,
	})
	if !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected ErrMatchLocked, got %v", err)
	}
}

func TestPredictionService_RejectsNegativeScores(t *testing.T) {
	env := newTestEnv(t)
	groupID := env.createGroup(t)

	_, err := env.predictions.SavePrediction(t.Context(), SavePredictionInput{
		GroupID: groupID, UserID: "demo-admin", MatchID: "m-001", Team1Score: -1, Team2Score: 0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPredictionService_UnknownMatch(t *testing.T) {
	env := newTestEnv(t)
	groupID := env.createGroup(t)

	_, err := env.predictions.SavePrediction(t.Context(), SavePredictionInput{
		GroupID: groupID, UserID: "demo-admin", MatchID: "m-999", Team1Score: 1, Team2Score: 0,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
