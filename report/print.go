package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"samse/event"
	. "samse/table"
)

// Validate a -fmt spec for the listing (stats=false) or the statistics (stats=true).

func ValidateFormat(fmtOpt string, stats bool) error {
	var others map[string]bool
	if stats {
		_, others = ParseFormatSpec(statsDefaultFields, fmtOpt, statsFormatters, statsAliases)
	} else {
		_, others = ParseFormatSpec(listingDefaultFields, fmtOpt, listingFormatters, listingAliases)
	}
	if unknown := UnknownFields(others); len(unknown) > 0 {
		return fmt.Errorf("Unknown field(s) in -fmt: %s", strings.Join(unknown, ","))
	}
	return nil
}

func MaybeFormatHelp(fmtOpt string, stats bool) *FormatHelp {
	if stats {
		return StandardFormatHelp(
			fmtOpt, statsHelp, statsFormatters, statsAliases, statsDefaultFields)
	}
	return StandardFormatHelp(
		fmtOpt, listingHelp, listingFormatters, listingAliases, listingDefaultFields)
}

func PrintListing(out io.Writer, fmtOpt string, events []*event.Event) error {
	fields, others := ParseFormatSpec(listingDefaultFields, fmtOpt, listingFormatters, listingAliases)
	if len(fields) == 0 {
		return errors.New("No output fields")
	}
	FormatData(out, fields, listingFormatters, StandardFormatOptions(others), events)
	return nil
}

func PrintStatistics(out io.Writer, fmtOpt string, losses []Loss) error {
	fields, others := ParseFormatSpec(statsDefaultFields, fmtOpt, statsFormatters, statsAliases)
	if len(fields) == 0 {
		return errors.New("No output fields")
	}
	FormatData(out, fields, statsFormatters, StandardFormatOptions(others), losses)
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Listing

const listingHelp = `
listing
  One line per outage event.  The duration of an event that has not ended runs to the present and
  is marked with '*'.  Default output format is 'fixed'.
`

const listingDefaultFields = "default"

// MT: Constant after initialization; immutable
var listingAliases = map[string][]string{
	"default": []string{"node", "down", "up", "reason", "duration"},
	"Default": []string{"NodeName", "Down", "Up", "Reason", "Duration"},
	"all": []string{
		"cluster", "node", "host", "partition", "down", "up", "state", "reason", "user",
		"duration", "ongoing",
	},
	"All": []string{
		"Cluster", "NodeName", "Host", "Partition", "Down", "Up", "State", "Reason", "User",
		"Duration", "Ongoing",
	},
}

// MT: Constant after initialization; immutable
var listingFormatters = map[string]Formatter[*event.Event]{
	"Cluster": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatString(d.Cluster, ctx)
		},
		Help: "Cluster name",
	},
	"NodeName": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatString(d.NodeName, ctx)
		},
		Help: "Full node name, host.code",
	},
	"Host": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatString(d.Host, ctx)
		},
		Help: "Host part of the node name",
	},
	"Partition": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatString(d.Partition, ctx)
		},
		Help: "Partition derived from the node name",
	},
	"Down": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatTimestamp(d.Down, ctx)
		},
		Help: "Time the node went down",
	},
	"Up": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			if d.Ongoing {
				return event.UnknownTime
			}
			return FormatTimestamp(d.Up, ctx)
		},
		Help: "Time the node came back up, or Unknown",
	},
	"State": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatString(d.State, ctx)
		},
		Help: "Node state code",
	},
	"Reason": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatString(d.Reason, ctx)
		},
		Help: "Reason given for the outage",
	},
	"User": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return FormatString(d.User, ctx)
		},
		Help: "User who recorded the event",
	},
	"Duration": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			if (ctx & PrintModSec) != 0 {
				return FormatDurationValue(d.Duration, ctx)
			}
			return d.DurationString()
		},
		Help: "Length of the outage, '*' if ongoing",
	},
	"Ongoing": {
		Fmt: func(d *event.Event, ctx PrintMods) string {
			return strconv.FormatBool(d.Ongoing)
		},
		Help: "True if the outage has not ended",
	},
}

func init() {
	DefAlias(listingFormatters, "Cluster", "cluster")
	DefAlias(listingFormatters, "NodeName", "node")
	DefAlias(listingFormatters, "Host", "host")
	DefAlias(listingFormatters, "Partition", "partition")
	DefAlias(listingFormatters, "Down", "down")
	DefAlias(listingFormatters, "Up", "up")
	DefAlias(listingFormatters, "State", "state")
	DefAlias(listingFormatters, "Reason", "reason")
	DefAlias(listingFormatters, "User", "user")
	DefAlias(listingFormatters, "Duration", "duration")
	DefAlias(listingFormatters, "Ongoing", "ongoing")
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Statistics

const statsHelp = `
statistics
  One line per partition with the number of outages, the time lost to them, and the percentage of
  the partition's node time in the reporting window that was lost.  Maintenance events are not
  counted.  The percentage is 'undefined' if the partition has no nodes, its size is unknown, or
  the window is empty.  Default output format is 'fixed'.
`

const statsDefaultFields = "default"

// MT: Constant after initialization; immutable
var statsAliases = map[string][]string{
	"default": []string{"partition", "lost", "percent", "count", "nodes"},
	"Default": []string{"Partition", "Lost", "Percent", "Count", "Nodes"},
	"all":     []string{"default"},
	"All":     []string{"Default"},
}

// MT: Constant after initialization; immutable
var statsFormatters = map[string]Formatter[Loss]{
	"Partition": {
		Fmt: func(d Loss, ctx PrintMods) string {
			return FormatString(d.Partition, ctx)
		},
		Help: "Partition name",
	},
	"Lost": {
		Fmt: func(d Loss, ctx PrintMods) string {
			return FormatDurationValue(d.Lost, ctx)
		},
		Help: "Node time lost to outages",
	},
	"Percent": {
		Fmt: func(d Loss, ctx PrintMods) string {
			return FormatFloat(d.Percent, 3, ctx)
		},
		Help: "Percentage of available node time lost",
	},
	"Count": {
		Fmt: func(d Loss, ctx PrintMods) string {
			return FormatInt(d.Count, ctx)
		},
		Help: "Number of outages",
	},
	"Nodes": {
		Fmt: func(d Loss, ctx PrintMods) string {
			if d.Nodes < 0 {
				return Undefined
			}
			return FormatInt(d.Nodes, ctx)
		},
		Help: "Number of nodes in the partition",
	},
}

func init() {
	DefAlias(statsFormatters, "Partition", "partition")
	DefAlias(statsFormatters, "Lost", "lost")
	DefAlias(statsFormatters, "Percent", "percent")
	DefAlias(statsFormatters, "Count", "count")
	DefAlias(statsFormatters, "Nodes", "nodes")
}
