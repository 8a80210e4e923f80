// Per-partition loss statistics.
//
// The loss for a partition over the reporting window is the sum of the durations of its outages
// (excluding planned maintenance) divided by the time available on the partition during the
// window, ie, the number of nodes times the length of the window.  When the partition has no nodes
// or the window is empty the percentage is undefined, represented as NaN.

package report

import (
	"math"
	"slices"
	"time"

	. "samse/common"
	"samse/event"
)

type PartitionStats struct {
	Count int
	Lost  time.Duration
}

// Keyed by partition name.  The map holds exactly the partitions that were observed, whatever
// they are.
type Stats map[string]*PartitionStats

// Accumulate non-maintenance events per partition.

func Aggregate(events []*event.Event, maintenance map[string]bool) Stats {
	stats := make(Stats)
	for _, e := range events {
		if maintenance[e.State] {
			continue
		}
		ps := stats[e.Partition]
		if ps == nil {
			ps = new(PartitionStats)
			stats[e.Partition] = ps
		}
		ps.Count++
		ps.Lost += e.Duration
	}
	return stats
}

// Nodes is -1 if the node count is not known.

type Loss struct {
	Partition string
	Count     int
	Lost      time.Duration
	Nodes     int
	Percent   float64
}

func (l *Loss) Defined() bool {
	return !math.IsNaN(l.Percent)
}

// `stats` may be nil, for a partition without any outages.

func PercentLost(
	partition string,
	stats *PartitionStats,
	start, now time.Time,
	nodes int,
) Loss {
	l := Loss{Partition: partition, Nodes: nodes, Percent: math.NaN()}
	if stats != nil {
		l.Count = stats.Count
		l.Lost = stats.Lost
	}
	window := now.Sub(start).Seconds()
	if nodes > 0 && window > 0 {
		possible := float64(nodes) * window
		l.Percent = l.Lost.Seconds() / possible * 100
	}
	return l
}

// Something that knows how many nodes there are in a partition.

type PartitionSizer interface {
	NodeCount(partition string) (int, error)
}

// Compute the loss for every partition in `known` and every partition in `stats`, sorted by
// partition name.  A partition whose size can't be determined is reported with an undefined
// percentage.

func Statistics(
	stats Stats,
	known []string,
	sizes PartitionSizer,
	start, now time.Time,
) []Loss {
	names := make([]string, 0, len(known)+len(stats))
	names = append(names, known...)
	for p := range stats {
		names = append(names, p)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	losses := make([]Loss, 0, len(names))
	for _, p := range names {
		nodes, err := sizes.NodeCount(p)
		if err != nil {
			Log.Warningf("Could not get size of partition %s: %v", p, err)
			nodes = -1
		}
		losses = append(losses, PercentLost(p, stats[p], start, now, nodes))
	}
	return losses
}
