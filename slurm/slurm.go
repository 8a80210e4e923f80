// Glue for the Slurm commands the reporter depends on: `sacctmgr show event` for the outage
// events and `sinfo` for partition sizes.

package slurm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"samse/event"
	"samse/process"
)

const (
	SacctmgrCommand = "sacctmgr"
	SinfoCommand    = "sinfo"
)

// The arguments to sacctmgr.  `start` and `end` are passed through verbatim if not "", they are
// normally of the form start=YYYY-MM-DD and end=YYYY-MM-DD.

func EventArgs(start, end string) []string {
	args := []string{"show", "event", "-n"}
	if start != "" {
		args = append(args, start)
	}
	if end != "" {
		args = append(args, end)
	}
	return args
}

// Run sacctmgr and return its nonempty output lines.

func FetchEvents(runner process.Runner, start, end string) ([]string, error) {
	stdout, stderr, err := runner.Run(SacctmgrCommand, EventArgs(start, end))
	if err != nil {
		return nil, withStderr(err, stderr)
	}
	return event.Lines(stdout), nil
}

// Node counts for partitions.  Counts from the defaults file take precedence, otherwise sinfo is
// asked, and its answers are cached for the run.  With a nil runner, only the static counts are
// available.

type PartitionSizes struct {
	runner process.Runner
	static map[string]int
	cache  map[string]int
}

func NewPartitionSizes(static map[string]int, runner process.Runner) *PartitionSizes {
	return &PartitionSizes{
		runner: runner,
		static: static,
		cache:  make(map[string]int),
	}
}

// sinfo prints one line per group of nodes in the same state, so the counts are summed.  A
// partition sinfo does not know about has zero nodes.

func (ps *PartitionSizes) NodeCount(partition string) (int, error) {
	if n, found := ps.static[partition]; found {
		return n, nil
	}
	if n, found := ps.cache[partition]; found {
		return n, nil
	}
	if ps.runner == nil {
		return 0, fmt.Errorf("No node count configured for partition %s", partition)
	}
	stdout, stderr, err := ps.runner.Run(SinfoCommand, []string{"-h", "-o", "%D", "-p", partition})
	if err != nil {
		return 0, withStderr(err, stderr)
	}
	total := 0
	for _, l := range event.Lines(stdout) {
		n, err := strconv.ParseUint(strings.TrimSpace(l), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("Unexpected sinfo output for partition %s: %q", partition, l)
		}
		total += int(n)
	}
	ps.cache[partition] = total
	return total, nil
}

// The names of the partitions sinfo knows about, sorted.

func (ps *PartitionSizes) Partitions() ([]string, error) {
	if ps.runner == nil {
		return nil, errors.New("No sinfo runner")
	}
	stdout, stderr, err := ps.runner.Run(SinfoCommand, []string{"-h", "-o", "%R"})
	if err != nil {
		return nil, withStderr(err, stderr)
	}
	names := make([]string, 0)
	for _, l := range event.Lines(stdout) {
		names = append(names, strings.TrimSuffix(strings.TrimSpace(l), "*"))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func withStderr(err error, stderr string) error {
	if s := strings.TrimSpace(stderr); s != "" {
		return errors.Join(err, errors.New(s))
	}
	return err
}
