package competition

import (
	"strings"
	"time"
)

const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusFinished = "finished"
)

const (
	TypeWorldCup    = "world_cup"
	TypeContinental = "continental"
	TypeClub        = "club"
	TypeLeague      = "league"
	TypeOther       = "other"
)

// Competition is one tournament that groups predict against.
type Competition struct {
	ID        string
	Name      string
	Type      string
	StartDate time.Time
	EndDate   time.Time
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusUpcoming
	}
	return status
}
