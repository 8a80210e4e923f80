package event

import (
	"fmt"
	"strings"
	"time"
)

// Split raw command output into lines, dropping empty ones.

func Lines(output string) []string {
	lines := make([]string, 0)
	for _, l := range strings.Split(output, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Parse all the lines.  Events in retired partitions are dropped silently.  Malformed lines are
// skipped; one error per skipped line is returned in `malformed`, carrying the 1-based line number.
// An empty input is not an error.

func ParseEvents(
	lines []string,
	now time.Time,
	retired map[string]bool,
) (events []*Event, malformed []error) {
	events = make([]*Event, 0, len(lines))
	for i, l := range lines {
		e, err := ParseEvent(l, now)
		if err != nil {
			malformed = append(malformed, fmt.Errorf("Line %d: %w", i+1, err))
			continue
		}
		if e == nil || retired[e.Partition] {
			continue
		}
		events = append(events, e)
	}
	return
}
