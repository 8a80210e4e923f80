package command

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"
	"testing"
	"time"

	. "samse/common"
	"samse/report"
	"samse/status"
)

var now = time.Date(2023, 1, 11, 0, 0, 0, 0, time.Local)

func mkline(node, down, up, state, reason string) string {
	return fmt.Sprintf("%10s %15s %19s %19s %6s %30s %10s", "savio", node, down, up, state, reason, "root")
}

var sacctmgrOutput = strings.Join([]string{
	mkline("n1.lr3", "2023-01-02T00:00:00", "2023-01-02T10:00:00", "DOWN", "cpu"),
	mkline("n2.lr3", "2023-01-04T00:00:00", "2023-01-04T00:30:00", "MAINT", "upgrade"),
	mkline("n1.lr4", "2023-01-05T00:00:00", "bogus", "DOWN", "disk"),
	mkline("n7.cf0", "2023-01-03T00:00:00", "2023-01-03T01:00:00", "DOWN", "old"),
	mkline("n3.lr4", "2023-01-10T00:00:00", "Unknown", "DRAIN", "memory"),
}, "\n") + "\n"

type fakeRunner struct {
	responses map[string]string
	calls     []string
}

func (f *fakeRunner) Run(program string, args []string) (string, string, error) {
	c := program + " " + strings.Join(args, " ")
	f.calls = append(f.calls, c)
	if s, found := f.responses[c]; found {
		return s, "", nil
	}
	return "", "", errors.New("exit status 1")
}

func newCommand(t *testing.T, args ...string) *ReportCommand {
	rc := new(ReportCommand)
	fs := flag.NewFlagSet("samse", flag.ContinueOnError)
	rc.Add(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	if err := rc.SetRestArguments(fs.Args()); err != nil {
		t.Fatal(err)
	}
	return rc
}

func TestValidate(t *testing.T) {
	rc := newCommand(t, "-sort", "bogus")
	rc.ApplyConfig(DefaultConfig())
	err := rc.Validate()
	if !errors.Is(err, report.ErrUnknownSortPolicy) {
		t.Fatalf("Expected unknown policy, got %v", err)
	}

	rc = newCommand(t, "-sort", "name", "-fmt", "node,percent", "start=2023-01-01")
	if err := rc.Validate(); err == nil || !strings.Contains(err.Error(), "percent") {
		t.Fatalf("Expected format error, got %v", err)
	}

	rc = newCommand(t, "-stats", "start=2023-13-01")
	if err := rc.Validate(); err == nil {
		t.Fatal("Expected start error")
	}

	rc = newCommand(t, "-stats", "-fmt", "partition,percent,csv", "-sort", "duration")
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	if rc.Policy() != report.SortByDuration {
		t.Fatalf("Policy %v", rc.Policy())
	}

	if err := new(ReportCommand).SetRestArguments([]string{"a", "b", "c"}); err == nil {
		t.Fatal("Expected error for three arguments")
	}
}

func TestApplyConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sort = "duration"
	cfg.Fmt = "all"
	cfg.From = "2022-12-01"

	rc := newCommand(t, "-sort", "name")
	rc.ApplyConfig(cfg)
	if rc.Sort != "name" || rc.Fmt != "all" || rc.Start != "start=2022-12-01" {
		t.Fatalf("Applied %+v", rc)
	}
	if rc.Config() != cfg {
		t.Fatal("Config not retained")
	}

	rc = newCommand(t, "start=2023-01-01", "end=2023-02-01")
	rc.ApplyConfig(cfg)
	if rc.Sort != "duration" || rc.Start != "start=2023-01-01" || rc.End != "end=2023-02-01" {
		t.Fatalf("Applied %+v", rc)
	}
}

func writeInput(t *testing.T) string {
	fn := path.Join(t.TempDir(), "events.txt")
	if err := os.WriteFile(fn, []byte(sacctmgrOutput), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestPerformListing(t *testing.T) {
	rc := newCommand(t, "-input", writeInput(t), "-sort", "duration", "-fmt", "node,duration,noheader")
	rc.ApplyConfig(DefaultConfig())
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	r := &fakeRunner{}
	if err := rc.Perform(&out, r, now); err != nil {
		t.Fatal(err)
	}
	want := "n2.lr3  0:30:00\nn1.lr3  10:00:00\nn3.lr4  1 day, 0:00:00*\n"
	if s := out.String(); s != want {
		t.Fatalf("Listing\n%s", s)
	}
	if len(r.calls) != 0 {
		t.Fatalf("Unexpected commands %v", r.calls)
	}
}

func TestPerformStatistics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NodeCounts["lr3"] = 10
	rc := newCommand(t, "-stats", "-fmt", "csv", "start=2023-01-01")
	rc.ApplyConfig(cfg)
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	r := &fakeRunner{responses: map[string]string{
		"sacctmgr show event -n start=2023-01-01": sacctmgrOutput,
		"sinfo -h -o %R":                          "lr3\nlr4\ncf\nlr5\n",
		"sinfo -h -o %D -p lr4":                   "4\n",
	}}
	var out strings.Builder
	if err := rc.Perform(&out, r, now); err != nil {
		t.Fatal(err)
	}
	// lr3: 10h of 10 nodes * 240h.  lr4: 24h of 4 nodes * 240h.  lr5: sinfo fails.
	want := "" +
		"lr3,10:00:00,0.417,1,10\n" +
		"lr4,\"1 day, 0:00:00\",2.500,1,4\n" +
		"lr5,0:00:00,undefined,0,undefined\n"
	if s := out.String(); s != want {
		t.Fatalf("Statistics\n%s", s)
	}
}

func TestPerformNoOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Known = []string{"lr3", "lr4"}
	cfg.NodeCounts["lr3"] = 10
	cfg.NodeCounts["lr4"] = 4
	rc := newCommand(t, "-stats", "-fmt", "awk")
	rc.ApplyConfig(cfg)
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	// sacctmgr fails, so there are no events, and every known partition has lost nothing.
	var out strings.Builder
	if err := rc.Perform(&out, &fakeRunner{}, now); err != nil {
		t.Fatal(err)
	}
	want := "lr3 0:00:00 0.000 0 10\nlr4 0:00:00 0.000 0 4\n"
	if s := out.String(); s != want {
		t.Fatalf("Statistics\n%s", s)
	}
}

func TestPerformPartitionFilter(t *testing.T) {
	rc := newCommand(t, "-input", writeInput(t), "-p", "lr3", "-fmt", "node,state,noheader")
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	if err := rc.Perform(&out, &fakeRunner{}, now); err != nil {
		t.Fatal(err)
	}
	// Default sort is by reason; maintenance events are listed.
	if s := out.String(); s != "n1.lr3  DOWN\nn2.lr3  MAINT\n" {
		t.Fatalf("Listing\n%s", s)
	}
}

func TestPerformMissingInput(t *testing.T) {
	rc := newCommand(t, "-input", path.Join(t.TempDir(), "nope"))
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := rc.Perform(new(strings.Builder), &fakeRunner{}, now); err == nil {
		t.Fatal("Expected error for missing input")
	}
}

func TestPerformListingRelativeStart(t *testing.T) {
	// sacctmgr understands more start forms than the statistics do; the listing passes them on.
	for _, start := range []string{"start=now-7days", "start=01/05/23", "start=2023-01-05T10:00:00"} {
		rc := newCommand(t, "-fmt", "node,noheader", start)
		if err := rc.Validate(); err != nil {
			t.Fatalf("%s: %v", start, err)
		}
		r := &fakeRunner{responses: map[string]string{
			"sacctmgr show event -n " + start: sacctmgrOutput,
		}}
		var out strings.Builder
		if err := rc.Perform(&out, r, now); err != nil {
			t.Fatalf("%s: %v", start, err)
		}
		if s := out.String(); s != "n1.lr3\nn3.lr4\nn2.lr3\n" {
			t.Fatalf("%s: listing\n%s", start, s)
		}
	}

	rc := newCommand(t, "-stats", "start=now-7days")
	if err := rc.Validate(); err == nil {
		t.Fatal("Expected start error for -stats")
	}
}

func TestPerformNoKnownPartitions(t *testing.T) {
	var log strings.Builder
	Log.SetStderr(&log)
	defer Log.SetStderr(os.Stderr)

	fn := path.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(fn, nil, 0644); err != nil {
		t.Fatal(err)
	}
	rc := newCommand(t, "-stats", "-fmt", "csv", "-input", fn)
	rc.ApplyConfig(DefaultConfig())
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	if err := rc.Perform(&out, &fakeRunner{}, now); err != nil {
		t.Fatal(err)
	}
	if out.String() != "" {
		t.Fatalf("Statistics\n%s", out.String())
	}
	if !strings.Contains(log.String(), "Could not list partitions") ||
		!strings.Contains(log.String(), "No known partitions") {
		t.Fatalf("Log\n%s", log.String())
	}
}

type syslogRecorder struct {
	msgs []string
}

func (r *syslogRecorder) Debug(m string) error   { r.msgs = append(r.msgs, m); return nil }
func (r *syslogRecorder) Info(m string) error    { r.msgs = append(r.msgs, m); return nil }
func (r *syslogRecorder) Warning(m string) error { r.msgs = append(r.msgs, m); return nil }
func (r *syslogRecorder) Err(m string) error     { r.msgs = append(r.msgs, m); return nil }
func (r *syslogRecorder) Crit(m string) error    { r.msgs = append(r.msgs, m); return nil }

func TestSetupLogging(t *testing.T) {
	rec := new(syslogRecorder)
	var tag string
	dial := func(logTag string) (status.UnderlyingLogger, error) {
		tag = logTag
		return rec, nil
	}

	var stderr strings.Builder
	log := status.NewLogger(status.LogLevelWarning, &stderr)
	rc := newCommand(t, "-v", "-syslog")
	if err := rc.SetupLogging(log, dial); err != nil {
		t.Fatal(err)
	}
	log.Info("hello")
	if tag != "samse" || !slices.Equal(rec.msgs, []string{"hello"}) || stderr.String() != "hello\n" {
		t.Fatalf("Logged %q %v %q", tag, rec.msgs, stderr.String())
	}

	// Without -syslog the syslog is not opened, and without -v info is suppressed.
	log = status.NewLogger(status.LogLevelWarning, &stderr)
	rc = newCommand(t)
	if err := rc.SetupLogging(log, func(string) (status.UnderlyingLogger, error) {
		t.Fatal("Unexpected dial")
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}

	rc = newCommand(t, "-syslog")
	err := rc.SetupLogging(log, func(string) (status.UnderlyingLogger, error) {
		return nil, errors.New("no syslog")
	})
	if err == nil || !strings.Contains(err.Error(), "no syslog") {
		t.Fatalf("Expected dial error, got %v", err)
	}
}
