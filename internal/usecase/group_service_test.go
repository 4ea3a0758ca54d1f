package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
)

func TestGroupService_CreateGroup(t *testing.T) {
	env := newTestEnv(t)

	g, err := env.groups.CreateGroup(t.Context(), CreateGroupInput{
		UserID:        "demo-admin",
		CompetitionID: "mundial-2026",
		Name:          "Polla familiar",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if g.AdminID != "demo-admin" {
		t.Fatalf("unexpected admin: %s", g.AdminID)
	}
	if len(g.Participants) != 1 || g.Participants[0] != "demo-admin" {
		t.Fatalf("expected creator as sole participant, got %v", g.Participants)
	}
	if !g.IsActive {
		t.Fatalf("expected new group active")
	}
	if len(g.Code) < 6 {
		t.Fatalf("invite code too short: %q", g.Code)
	}
	if g.Code != strings.ToUpper(g.Code) {
		t.Fatalf("invite code must be uppercase: %q", g.Code)
	}
	if g.Rules != group.DefaultRules() {
		t.Fatalf("expected default rules, got %+v", g.Rules)
	}

	u, found, err := env.userRepo.GetByID(t.Context(), "demo-admin")
	if err != nil || !found {
		t.Fatalf("load creator: found=%v err=%v", found, err)
	}
	if len(u.Groups) != 1 || u.Groups[0] != g.ID {
		t.Fatalf("expected group linked to creator, got %v", u.Groups)
	}
}

func TestGroupService_CreateGroup_InvalidRules(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.groups.CreateGroup(t.Context(), CreateGroupInput{
		UserID:        "demo-admin",
		CompetitionID: "mundial-2026",
		Name:          "Reglas rotas",
		Rules:         &group.Rules{PointsExactScore: 0, PointsWinner: 2},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGroupService_CreateGroup_UnknownCompetition(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.groups.CreateGroup(t.Context(), CreateGroupInput{
		UserID:        "demo-admin",
		CompetitionID: "euro-2028",
		Name:          "Demasiado pronto",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupService_JoinByCode(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.groups.CreateGroup(t.Context(), CreateGroupInput{
		UserID:        "demo-admin",
		CompetitionID: "mundial-2026",
		Name:          "Polla de amigos",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	joined, err := env.groups.JoinByCode(t.Context(), JoinGroupInput{
		UserID: "demo-user-1",
		Code:   strings.ToLower(created.Code), // codes are case-insensitive on join
	})
	if err != nil {
		t.Fatalf("join group: %v", err)
	}
	if !joined.HasMember("demo-user-1") {
		t.Fatalf("expected demo-user-1 in participants, got %v", joined.Participants)
	}

	// Joining again is a no-op.
	again, err := env.groups.JoinByCode(t.Context(), JoinGroupInput{UserID: "demo-user-1", Code: created.Code})
	if err != nil {
		t.Fatalf("re-join group: %v", err)
	}
	if len(again.Participants) != 2 {
		t.Fatalf("expected 2 participants after re-join, got %v", again.Participants)
	}
}

func TestGroupService_JoinByCode_UnknownCode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.groups.JoinByCode(t.Context(), JoinGroupInput{UserID: "demo-user-1", Code: "NOPE99"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupService_GetGroup_MemberOnly(t *testing.T) {
	env := newTestEnv(t)
	groupID := env.createGroup(t)

	if _, err := env.groups.GetGroup(t.Context(), groupID, "demo-admin"); err != nil {
		t.Fatalf("member read failed: %v", err)
	}

	_, err := env.groups.GetGroup(t.Context(), groupID, "demo-user-2")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGroupService_ListMyGroups(t *testing.T) {
	env := newTestEnv(t)
	first := env.createGroup(t, "demo-user-1")
	second := env.createGroup(t, "demo-user-1")

	groups, err := env.groups.ListMyGroups(t.Context(), "demo-user-1")
	if err != nil {
		t.Fatalf("list my groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	seen := map[string]bool{}
	for _, g := range groups {
		seen[g.ID] = true
	}
	if !seen[first] || !seen[second] {
		t.Fatalf("missing groups in listing: %v", seen)
	}
}

func TestGenerateInviteCode_AlphabetAndLength(t *testing.T) {
	code, err := generateInviteCode(6)
	if err != nil {
		t.Fatalf("generate invite code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("unexpected code length: %q", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(inviteCodeAlphabet, r) {
			t.Fatalf("character %q outside invite alphabet", r)
		}
	}
}
