package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slurm prints local wall-clock time without an offset.  Those times are represented here as
// wall-clock times in UTC, so that differences between them are wall-clock differences whatever
// happens to daylight saving time in between.  Use WallClock to bring the current time into the
// same form, and FromWallClock to get back a real instant.

// Parse a Slurm timestamp of the form YYYY-MM-DDTHH:MM:SS as a wall-clock time.  Every component
// must be an integer in range; Go's silent normalization of eg yyyy-02-30 is not accepted.

func ParseTimestamp(s string) (time.Time, error) {
	datePart, timePart, found := strings.Cut(strings.TrimSpace(s), "T")
	if !found {
		return time.Time{}, fmt.Errorf("Bad timestamp %q: missing 'T'", s)
	}
	ymd, err := parseInts(datePart, "-")
	if err != nil {
		return time.Time{}, fmt.Errorf("Bad timestamp %q: %w", s, err)
	}
	hms, err := parseInts(timePart, ":")
	if err != nil {
		return time.Time{}, fmt.Errorf("Bad timestamp %q: %w", s, err)
	}
	if hms[0] > 23 || hms[1] > 59 || hms[2] > 59 {
		return time.Time{}, fmt.Errorf("Bad timestamp %q: time out of range", s)
	}
	return makeDate(ymd[0], ymd[1], ymd[2], hms[0], hms[1], hms[2], time.UTC)
}

// The wall-clock reading of t, in its own location.

func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.UTC)
}

// The instant at which the clocks in loc read `wall`.  For a reading that occurs twice, when the
// clocks are set back, this is the earlier instant.

func FromWallClock(wall time.Time, loc *time.Location) time.Time {
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(),
		wall.Nanosecond(), loc)
}

// The first instant of the month containing `now`, in now's location.

func FirstOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// The start of the reporting window as a wall-clock time.  An empty argument means the first of
// the current month.  Otherwise it is YYYY-MM-DD, optionally preceded by `something=` as in the
// `start=...` argument passed on to sacctmgr, and the window starts at midnight of that day.

func ReportingStart(spec string, now time.Time) (time.Time, error) {
	if spec == "" {
		return FirstOfMonth(WallClock(now)), nil
	}
	date := spec
	if _, after, found := strings.Cut(spec, "="); found {
		date = after
	}
	ymd, err := parseInts(date, "-")
	if err != nil {
		return time.Time{}, fmt.Errorf("Bad start date %q: %w", spec, err)
	}
	return makeDate(ymd[0], ymd[1], ymd[2], 0, 0, 0, time.UTC)
}

func parseInts(s, sep string) ([3]int, error) {
	var xs [3]int
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return xs, fmt.Errorf("expected three %q-separated components", sep)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return xs, fmt.Errorf("non-numeric component %q", p)
		}
		xs[i] = int(n)
	}
	return xs, nil
}

func makeDate(y, mo, d, h, mi, s int, loc *time.Location) (time.Time, error) {
	if mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, errors.New("date out of range")
	}
	t := time.Date(y, time.Month(mo), d, h, mi, s, 0, loc)
	if t.Day() != d || t.Month() != time.Month(mo) {
		return time.Time{}, errors.New("date out of range")
	}
	return t, nil
}

// The format of timestamps in Slurm output.
const SlurmTimeFormat = "2006-01-02T15:04:05"
