package group

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidExactScorePoints = errors.New("exact score points must be positive")
	ErrInvalidWinnerPoints     = errors.New("winner points must be positive")
	ErrInvalidDifferencePoints = errors.New("goal difference points cannot be negative")
)

// Rules is the scoring configuration of one group. It is fixed at group
// creation and never mutated afterwards.
type Rules struct {
	PointsExactScore     int
	PointsWinner         int
	PointsGoalDifference int // 0 disables the goal-difference bonus
}

func DefaultRules() Rules {
	return Rules{
		PointsExactScore:     5,
		PointsWinner:         2,
		PointsGoalDifference: 1,
	}
}

func (r Rules) Validate() error {
	if r.PointsExactScore <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidExactScorePoints, r.PointsExactScore)
	}
	if r.PointsWinner <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWinnerPoints, r.PointsWinner)
	}
	if r.PointsGoalDifference < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDifferencePoints, r.PointsGoalDifference)
	}
	return nil
}

// Group is a private prediction pool tied to one competition.
type Group struct {
	ID            string
	CompetitionID string
	Name          string
	Code          string
	AdminID       string
	Participants  []string
	IsActive      bool
	Rules         Rules
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MemberIDs returns every participant plus the admin, deduplicated and in
// first-seen order.
func (g Group) MemberIDs() []string {
	seen := make(map[string]struct{}, len(g.Participants)+1)
	out := make([]string, 0, len(g.Participants)+1)
	for _, id := range g.Participants {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if _, ok := seen[g.AdminID]; !ok && g.AdminID != "" {
		out = append(out, g.AdminID)
	}
	return out
}

func (g Group) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	if userID == g.AdminID {
		return true
	}
	for _, id := range g.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
