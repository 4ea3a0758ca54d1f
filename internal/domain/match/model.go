package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
)

const defaultHalftimeMinutes = 15

// Result is the official score of a match. It exists only once the match has
// started and is owned by the external result feed.
type Result struct {
	Team1Score int
	Team2Score int
}

// Match is one fixture of a competition. Team names are denormalized onto the
// record so notification and display paths need no extra lookups.
type Match struct {
	ID               string
	CompetitionID    string
	MatchNumber      int
	Round            string
	Team1            string
	Team2            string
	Team1ID          string
	Team2ID          string
	ScheduledTime    time.Time
	StartTime        *time.Time
	Status           string
	Result           *Result
	ExtraTime1       int
	ExtraTime2       int
	HalftimeDuration int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

// Kickoff returns the authoritative kickoff instant: the recorded start time
// when present, the scheduled time otherwise.
func (m Match) Kickoff() time.Time {
	if m.StartTime != nil && !m.StartTime.IsZero() {
		return *m.StartTime
	}
	return m.ScheduledTime
}

func (m Match) HalftimeMinutes() int {
	if m.HalftimeDuration > 0 {
		return m.HalftimeDuration
	}
	return defaultHalftimeMinutes
}

func (m Match) IsScheduled() bool {
	return NormalizeStatus(m.Status) == StatusScheduled
}

func (m Match) IsLive() bool {
	return NormalizeStatus(m.Status) == StatusLive
}

func (m Match) IsFinished() bool {
	return NormalizeStatus(m.Status) == StatusFinished
}
