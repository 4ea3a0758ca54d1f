package match

import "strconv"

// FormatClock renders a clock the way the scoreboard shows it: "23'" during
// regular play, "45+2'" and "90+3'" during stoppage, "Entretiempo" at the
// break (with the first-half stoppage in parentheses when there was any).
func FormatClock(c Clock) string {
	if c.Minute == nil {
		return ""
	}

	extraTotal := 0
	if c.ExtraTimeTotal != nil {
		extraTotal = *c.ExtraTimeTotal
	}

	switch c.Phase {
	case PhaseHalftime:
		if extraTotal > 0 {
			return "Entretiempo (45+" + strconv.Itoa(extraTotal) + "')"
		}
		return "Entretiempo"
	case PhaseFirstHalfExtra:
		if extraTotal > 0 {
			return "45+" + strconv.Itoa(extraTotal) + "'"
		}
	case PhaseSecondHalfExtra:
		if extraTotal > 0 {
			return "90+" + strconv.Itoa(extraTotal) + "'"
		}
	case PhaseFinished:
		if c.ExtraTime != nil && *c.ExtraTime > 0 {
			return "90+" + strconv.Itoa(*c.ExtraTime) + "'"
		}
		return "90+'"
	}

	return strconv.Itoa(*c.Minute) + "'"
}
