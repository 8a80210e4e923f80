// Produce the outage listing and the per-partition statistics from parsed events.
//
// All the settings that affect the report are in Options, which the caller constructs from the
// command line and the defaults file.

package report

import (
	"time"

	"samse/event"
)

type Options struct {
	Policy SortPolicy

	// Restrict the listing and statistics to this partition if not ""
	Partition string

	// Event states that denote planned maintenance, which is not counted as lost time
	Maintenance map[string]bool

	// Partitions that are always present in the statistics, even without outages
	Known []string

	// The reporting window
	Start, Now time.Time
}

type Reporter struct {
	Options
	Sizes PartitionSizer
}

func NewReporter(opts Options, sizes PartitionSizer) *Reporter {
	return &Reporter{Options: opts, Sizes: sizes}
}

// The events in the partition, or all events if partition is "".

func Select(events []*event.Event, partition string) []*event.Event {
	if partition == "" {
		return events
	}
	selected := make([]*event.Event, 0)
	for _, e := range events {
		if e.Partition == partition {
			selected = append(selected, e)
		}
	}
	return selected
}

// The selected events in the requested order.

func (r *Reporter) Listing(events []*event.Event) []*event.Event {
	return r.Policy.Sort(Select(events, r.Partition))
}

// The loss per partition for the selected events.  With a partition filter, only that partition is
// reported, and it is reported even if it had no outages.

func (r *Reporter) Statistics(events []*event.Event) []Loss {
	known := r.Known
	if r.Partition != "" {
		known = []string{r.Partition}
	}
	stats := Aggregate(Select(events, r.Partition), r.Maintenance)
	return Statistics(stats, known, r.Sizes, r.Start, r.Now)
}
