package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/competition"
	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/user"
	idgen "github.com/JuanCGomezS/polla-club/internal/platform/id"
)

const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeAttempts = 5

type CreateGroupInput struct {
	UserID        string
	CompetitionID string
	Name          string
	Rules         *group.Rules
}

type JoinGroupInput struct {
	UserID string
	Code   string
}

type GroupService struct {
	competitionRepo competition.Repository
	groupRepo       group.Repository
	userRepo        user.Repository
	idGen           idgen.Generator
	now             func() time.Time
}

func NewGroupService(
	competitionRepo competition.Repository,
	groupRepo group.Repository,
	userRepo user.Repository,
	idGen idgen.Generator,
) *GroupService {
	return &GroupService{
		competitionRepo: competitionRepo,
		groupRepo:       groupRepo,
		userRepo:        userRepo,
		idGen:           idGen,
		now:             time.Now,
	}
}

// CreateGroup opens a new prediction pool on a competition. The creator
// becomes the admin and its first participant, and the returned group carries
// the invite code other users join with.
func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.CreateGroup")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.CompetitionID = strings.TrimSpace(input.CompetitionID)
	input.Name = strings.TrimSpace(input.Name)
	if input.UserID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.CompetitionID == "" {
		return group.Group{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return group.Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}

	rules := group.DefaultRules()
	if input.Rules != nil {
		rules = *input.Rules
	}
	if err := rules.Validate(); err != nil {
		return group.Group{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	comp, found, err := s.competitionRepo.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get competition: %w", err)
	}
	if !found {
		return group.Group{}, fmt.Errorf("%w: competition %s", ErrNotFound, input.CompetitionID)
	}
	if competition.NormalizeStatus(comp.Status) == competition.StatusFinished {
		return group.Group{}, fmt.Errorf("%w: competition %s already finished", ErrInvalidInput, comp.ID)
	}

	groupID, err := s.idGen.NewID()
	if err != nil {
		return group.Group{}, fmt.Errorf("generate group id: %w", err)
	}
	code, err := s.newInviteCode(ctx)
	if err != nil {
		return group.Group{}, err
	}

	now := s.now().UTC()
	g := group.Group{
		ID:            groupID,
		CompetitionID: comp.ID,
		Name:          input.Name,
		Code:          code,
		AdminID:       input.UserID,
		Participants:  []string{input.UserID},
		IsActive:      true,
		Rules:         rules,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		return group.Group{}, fmt.Errorf("create group: %w", err)
	}

	if err := s.userRepo.AddGroup(ctx, input.UserID, g.ID); err != nil {
		return group.Group{}, fmt.Errorf("link group to user: %w", err)
	}
	return g, nil
}

// JoinByCode adds the caller to the group behind an invite code. Joining a
// group the caller already belongs to succeeds without change.
func (s *GroupService) JoinByCode(ctx context.Context, input JoinGroupInput) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.JoinByCode")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if input.UserID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Code == "" {
		return group.Group{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	g, found, err := s.groupRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group by code: %w", err)
	}
	if !found {
		return group.Group{}, fmt.Errorf("%w: no group with code %s", ErrNotFound, input.Code)
	}
	if !g.IsActive {
		return group.Group{}, fmt.Errorf("%w: group %s is closed", ErrInvalidInput, g.ID)
	}

	if !g.HasMember(input.UserID) {
		if err := s.groupRepo.AddParticipant(ctx, g.ID, input.UserID); err != nil {
			return group.Group{}, fmt.Errorf("add participant: %w", err)
		}
		g.Participants = append(g.Participants, input.UserID)
	}
	if err := s.userRepo.AddGroup(ctx, input.UserID, g.ID); err != nil {
		return group.Group{}, fmt.Errorf("link group to user: %w", err)
	}
	return g, nil
}

// GetGroup returns one group; only members can see it.
func (s *GroupService) GetGroup(ctx context.Context, groupID, userID string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.GetGroup")
	defer span.End()

	g, found, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group: %w", err)
	}
	if !found {
		return group.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !g.HasMember(userID) {
		return group.Group{}, fmt.Errorf("%w: user %s is not a member of group %s", ErrUnauthorized, userID, groupID)
	}
	return g, nil
}

func (s *GroupService) ListMyGroups(ctx context.Context, userID string) ([]group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.ListMyGroups")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	groups, err := s.groupRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	return groups, nil
}

// newInviteCode retries on the unlikely collision with an existing group.
func (s *GroupService) newInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := generateInviteCode(6)
		if err != nil {
			return "", err
		}
		_, taken, err := s.groupRepo.GetByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a free invite code", ErrDependencyUnavailable)
}

func generateInviteCode(length int) (string, error) {
	if length < 6 {
		length = 6
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(out), nil
}
