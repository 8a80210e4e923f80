// Parse the output of `sacctmgr show event -n` into outage events.
//
// The output is fixed-width, one event per line, right-aligned in columns:
//
//      Cluster        NodeName           TimeStart             TimeEnd  State                         Reason       User
//   ---------- --------------- ------------------- ------------------- ------ ------------------------------ ----------
//     savio1     n0001.lr60+ 2023-01-05T00:00:00 2023-01-05T12:00:00   DOWN                       hardware      root
//
// A node name is <host>.<partition-code>.  The partition is derived from the code by deleting all
// the "0" digits and turning "+" into "t", so "lr60+" becomes "lr6t".  This is how the site names
// its partitions relative to the node codes.
//
// An event whose up time is "Unknown" has not ended.  Its duration runs to the time the event was
// parsed, and it is marked as ongoing.
//
// Times are wall-clock times (see common.ParseTimestamp) and durations are wall-clock differences,
// except across the hour that repeats when the clocks are set back: an outage that starts in the
// first pass through that hour and ends in the second is credited with the hour.

package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	. "samse/common"
)

// Column boundaries [start,end) of the fields.  Each field includes the blank that separates it
// from its left neighbor.

const (
	clusterStart = 0
	nodeStart    = 11
	downStart    = 27
	upStart      = 47
	stateStart   = 67
	reasonStart  = 74
	userStart    = 105
	userEnd      = 116
)

// The TimeEnd value of an event that has not ended.
const UnknownTime = "Unknown"

// The marker appended to the duration of an ongoing event.
const OngoingMarker = "*"

var ErrMalformedRecord = errors.New("Malformed record")

type Event struct {
	Cluster   string
	NodeName  string
	Host      string // first dot-segment of NodeName
	Code      string // second dot-segment of NodeName, verbatim
	Partition string // Code normalized
	Down      time.Time
	Up        time.Time // zero if Ongoing
	Ongoing   bool
	State     string
	Reason    string
	User      string
	Duration  time.Duration
}

// Parse one line of sacctmgr output.  Lines that are not data (blank, header, separator) yield
// nil, nil.  Lines that look like data but can't be parsed yield an error wrapping
// ErrMalformedRecord.  `now` is the end time for ongoing events, and its location is the time
// zone of the cluster.

func ParseEvent(line string, now time.Time) (*Event, error) {
	nodeName := column(line, nodeStart, downStart)
	if nodeName == "" || strings.Trim(nodeName, "-") == "" || nodeName == "NodeName" {
		return nil, nil
	}

	host, code, found := strings.Cut(nodeName, ".")
	if !found || host == "" || code == "" {
		return nil, fmt.Errorf("%w: node name %q has no partition code", ErrMalformedRecord, nodeName)
	}
	if before, _, more := strings.Cut(code, "."); more {
		code = before
	}

	down, err := ParseTimestamp(column(line, downStart, upStart))
	if err != nil {
		return nil, fmt.Errorf("%w: down time: %w", ErrMalformedRecord, err)
	}

	e := &Event{
		Cluster:   column(line, clusterStart, nodeStart),
		NodeName:  nodeName,
		Host:      host,
		Code:      code,
		Partition: PartitionOf(code),
		Down:      down,
		State:     column(line, stateStart, reasonStart),
		Reason:    column(line, reasonStart, userStart),
		User:      column(line, userStart, userEnd),
	}

	upField := column(line, upStart, stateStart)
	if upField == UnknownTime {
		e.Ongoing = true
		e.Duration = max(WallClock(now).Sub(down), 0)
	} else {
		up, err := ParseTimestamp(upField)
		if err != nil {
			return nil, fmt.Errorf("%w: up time: %w", ErrMalformedRecord, err)
		}
		e.Up = up
		e.Duration = up.Sub(down)
		if e.Duration < 0 {
			e.Duration += setBack(down, now.Location())
		}
		if e.Duration < 0 {
			return nil, fmt.Errorf("%w: node %s is up before it is down", ErrMalformedRecord, nodeName)
		}
	}
	return e, nil
}

// Normalize a partition code.

func PartitionOf(code string) string {
	return strings.ReplaceAll(strings.ReplaceAll(code, "0", ""), "+", "t")
}

// The duration with the ongoing marker if the event has not ended.

func (e *Event) DurationString() string {
	s := FormatDuration(e.Duration)
	if e.Ongoing {
		s += OngoingMarker
	}
	return s
}

func (e *Event) UpString() string {
	if e.Ongoing {
		return UnknownTime
	}
	return e.Up.Format(SlurmTimeFormat)
}

func (e *Event) DownString() string {
	return e.Down.Format(SlurmTimeFormat)
}

func (e *Event) String() string {
	return fmt.Sprintf(
		"%s %s-%s %s %s %s", e.NodeName, e.DownString(), e.UpString(), e.State, e.Reason,
		e.DurationString())
}

// If the wall-clock time `wall` falls in the first pass through an hour that repeats in loc, the
// amount the clocks are set back, otherwise zero.

func setBack(wall time.Time, loc *time.Location) time.Duration {
	t := FromWallClock(wall, loc)
	_, before := t.Zone()
	_, after := t.Add(3 * time.Hour).Zone()
	shift := time.Duration(before-after) * time.Second
	if shift > 0 && WallClock(t.Add(shift)).Equal(wall) {
		return shift
	}
	return 0
}

// Slice the trimmed column out of the line, tolerating short lines.

func column(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	return strings.TrimSpace(line[start:min(end, len(line))])
}
