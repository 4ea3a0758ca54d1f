package match

import "time"

type Phase string

const (
	PhaseNotStarted      Phase = "not_started"
	PhaseFirstHalf       Phase = "first_half"
	PhaseFirstHalfExtra  Phase = "first_half_extra"
	PhaseHalftime        Phase = "halftime"
	PhaseSecondHalf      Phase = "second_half"
	PhaseSecondHalfExtra Phase = "second_half_extra"
	PhaseFinished        Phase = "finished"
)

// Clock is the derived display state of a live match at one instant.
// ExtraTime is the stoppage elapsed so far; ExtraTimeTotal is the configured
// allotment, so "45+1'" and "45+2'" can both be rendered while two added
// minutes are being played. Nil fields mean "not applicable in this phase".
type Clock struct {
	Phase          Phase
	Minute         *int
	ExtraTime      *int
	ExtraTimeTotal *int
	Seconds        *int
}

// ComputeClock maps wall-clock time onto a match minute and phase. It is pure:
// the caller re-evaluates every second while the match is live and freezes the
// last value once the status flips to finished.
func ComputeClock(m Match, now time.Time) Clock {
	kickoff := m.Kickoff()
	if kickoff.IsZero() {
		return Clock{Phase: PhaseNotStarted}
	}

	elapsedSeconds := int(now.Sub(kickoff) / time.Second)
	if elapsedSeconds < 0 {
		return Clock{Phase: PhaseNotStarted}
	}
	elapsedMinutes := elapsedSeconds / 60
	secondsInMinute := elapsedSeconds % 60

	firstHalfEnd := 45 + m.ExtraTime1
	halftimeEnd := firstHalfEnd + m.HalftimeMinutes()

	if elapsedMinutes <= firstHalfEnd {
		if elapsedMinutes < 45 {
			return Clock{
				Phase:   PhaseFirstHalf,
				Minute:  intPtr(elapsedMinutes),
				Seconds: intPtr(secondsInMinute),
			}
		}
		return Clock{
			Phase:          PhaseFirstHalfExtra,
			Minute:         intPtr(45),
			ExtraTime:      intPtr(elapsedMinutes - 45),
			ExtraTimeTotal: intPtr(m.ExtraTime1),
			Seconds:        intPtr(secondsInMinute),
		}
	}

	if elapsedMinutes <= halftimeEnd {
		return Clock{
			Phase:          PhaseHalftime,
			Minute:         intPtr(45),
			ExtraTime:      intPtr(m.ExtraTime1),
			ExtraTimeTotal: intPtr(m.ExtraTime1),
		}
	}

	secondHalfMinute := 45 + (elapsedMinutes - halftimeEnd)
	if secondHalfMinute < 90 {
		return Clock{
			Phase:   PhaseSecondHalf,
			Minute:  intPtr(secondHalfMinute),
			Seconds: intPtr(secondsInMinute),
		}
	}

	extra := secondHalfMinute - 90
	if extra <= m.ExtraTime2 {
		return Clock{
			Phase:          PhaseSecondHalfExtra,
			Minute:         intPtr(90),
			ExtraTime:      intPtr(extra),
			ExtraTimeTotal: intPtr(m.ExtraTime2),
			Seconds:        intPtr(secondsInMinute),
		}
	}

	return Clock{
		Phase:          PhaseFinished,
		Minute:         intPtr(90),
		ExtraTime:      intPtr(m.ExtraTime2),
		ExtraTimeTotal: intPtr(m.ExtraTime2),
	}
}

func intPtr(v int) *int {
	return &v
}
