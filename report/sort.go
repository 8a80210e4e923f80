package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"samse/event"
)

// How to order the listing.  The zero value is the default order, by reason.

type SortPolicy int

const (
	SortByReason SortPolicy = iota
	SortByDuration
	SortByName
	SortByDownDate
)

var ErrUnknownSortPolicy = errors.New("Unknown sort policy")

type comparator func(a, b *event.Event) int

// Each policy is a sequence of stable sorts, so the last pass provides the primary key.
//
// MT: Constant after initialization; immutable
var policies = [...]struct {
	name   string
	passes []comparator
}{
	SortByReason: {
		"reason",
		[]comparator{func(a, b *event.Event) int { return cmp.Compare(a.Reason, b.Reason) }},
	},
	SortByDuration: {
		"duration",
		[]comparator{func(a, b *event.Event) int { return cmp.Compare(a.Duration, b.Duration) }},
	},
	SortByName: {
		"name",
		[]comparator{
			func(a, b *event.Event) int { return cmp.Compare(a.Host, b.Host) },
			func(a, b *event.Event) int { return cmp.Compare(a.Code, b.Code) },
		},
	},
	SortByDownDate: {
		"down_date",
		[]comparator{func(a, b *event.Event) int { return a.Down.Compare(b.Down) }},
	},
}

// Valid policy names in the order they are presented to the user.
func SortPolicyNames() []string {
	return []string{
		SortByDuration.String(),
		SortByName.String(),
		SortByDownDate.String(),
		SortByReason.String() + " (default)",
	}
}

// The empty string selects the default.

func ParseSortPolicy(s string) (SortPolicy, error) {
	if s == "" {
		return SortByReason, nil
	}
	for i, p := range policies {
		if p.name == s {
			return SortPolicy(i), nil
		}
	}
	return SortByReason, fmt.Errorf(
		"%w '%s'\nValid policies: %s", ErrUnknownSortPolicy, s, strings.Join(SortPolicyNames(), ", "))
}

func (p SortPolicy) String() string {
	return policies[p].name
}

// Return a sorted copy of the events.  The input is not modified, and events that compare equal
// retain their relative order.

func (p SortPolicy) Sort(events []*event.Event) []*event.Event {
	sorted := slices.Clone(events)
	for _, pass := range policies[p].passes {
		slices.SortStableFunc(sorted, pass)
	}
	return sorted
}
