package command

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	. "samse/common"
	"samse/event"
	"samse/process"
	"samse/report"
	"samse/slurm"
)

// Run the report.  `runner` runs sacctmgr and sinfo, `now` is the end of the reporting window and
// the end time of ongoing outages.  The start argument is parsed only for the statistics.
//
// A failing sacctmgr is not an error: it is reported and the report is produced from zero events,
// as an empty reporting period is valid.

func (rc *ReportCommand) Perform(out io.Writer, runner process.Runner, now time.Time) error {
	cfg := rc.config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	lines, err := rc.readLines(runner)
	if err != nil {
		return err
	}
	events, malformed := event.ParseEvents(lines, now, StringSet(cfg.Retired))
	for _, err := range malformed {
		Log.Warningf("Skipping record: %v", err)
	}
	Log.Infof("%d lines read, %d events retained, %d malformed", len(lines), len(events), len(malformed))

	sizes := slurm.NewPartitionSizes(cfg.NodeCounts, runner)
	r := report.NewReporter(report.Options{
		Policy:      rc.policy,
		Partition:   rc.Partition,
		Maintenance: StringSet(cfg.Maintenance),
		Now:         WallClock(now),
	}, sizes)

	if !rc.Stats {
		return report.PrintListing(out, rc.Fmt, r.Listing(events))
	}
	r.Start, err = ReportingStart(rc.Start, now)
	if err != nil {
		return err
	}
	r.Known = rc.knownPartitions(cfg, sizes)
	Log.Infof("Reporting window %s to %s",
		r.Start.Format(SlurmTimeFormat), r.Now.Format(SlurmTimeFormat))
	return report.PrintStatistics(out, rc.Fmt, r.Statistics(events))
}

func (rc *ReportCommand) readLines(runner process.Runner) ([]string, error) {
	if rc.InputFile != "" {
		bytes, err := os.ReadFile(rc.InputFile)
		if err != nil {
			return nil, fmt.Errorf("Failed to read input: %w", err)
		}
		return event.Lines(string(bytes)), nil
	}
	Log.Infof("Running %s %v", slurm.SacctmgrCommand, slurm.EventArgs(rc.Start, rc.End))
	lines, err := slurm.FetchEvents(runner, rc.Start, rc.End)
	if err != nil {
		Log.Errorf("No events: %v", err)
		return nil, nil
	}
	return lines, nil
}

// The partitions that appear in the statistics even without outages: those named in the defaults
// file, or failing that, those sinfo knows about.  Retired partitions are never included.

func (rc *ReportCommand) knownPartitions(cfg *Config, sizes *slurm.PartitionSizes) []string {
	known := cfg.Known
	if len(known) == 0 {
		var err error
		known, err = sizes.Partitions()
		if err != nil {
			Log.Warningf("Could not list partitions: %v", err)
		}
	}
	known = slices.DeleteFunc(slices.Clone(known), func(p string) bool {
		return slices.Contains(cfg.Retired, p)
	})
	if len(known) == 0 {
		Log.Warning("No known partitions, only partitions with outages are reported")
	}
	return known
}
