package slurm

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

type call struct {
	program string
	args    string
}

// Canned responses keyed by program and space-joined arguments.
type fakeRunner struct {
	responses map[call]string
	calls     []call
}

func (f *fakeRunner) Run(program string, args []string) (string, string, error) {
	c := call{program, strings.Join(args, " ")}
	f.calls = append(f.calls, c)
	if s, found := f.responses[c]; found {
		return s, "", nil
	}
	return "", "no such thing", errors.New("exit status 1")
}

func TestEventArgs(t *testing.T) {
	if a := EventArgs("", ""); !slices.Equal(a, []string{"show", "event", "-n"}) {
		t.Fatalf("Args %v", a)
	}
	a := EventArgs("start=2023-01-01", "end=2023-02-01")
	if !slices.Equal(a, []string{"show", "event", "-n", "start=2023-01-01", "end=2023-02-01"}) {
		t.Fatalf("Args %v", a)
	}
}

func TestFetchEvents(t *testing.T) {
	r := &fakeRunner{responses: map[call]string{
		{"sacctmgr", "show event -n start=2023-01-01"}: "line one\n\n  line two\n",
	}}
	lines, err := FetchEvents(r, "start=2023-01-01", "")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(lines, []string{"line one", "  line two"}) {
		t.Fatalf("Lines %q", lines)
	}

	_, err = FetchEvents(r, "", "")
	if err == nil || !strings.Contains(err.Error(), "no such thing") {
		t.Fatalf("Error %v", err)
	}
}

func TestNodeCount(t *testing.T) {
	r := &fakeRunner{responses: map[call]string{
		{"sinfo", "-h -o %D -p lr4"}: "12\n3\n",
		{"sinfo", "-h -o %D -p lr9"}: "",
		{"sinfo", "-h -o %D -p bad"}: "lots\n",
	}}
	ps := NewPartitionSizes(map[string]int{"lr3": 100}, r)

	if n, err := ps.NodeCount("lr3"); err != nil || n != 100 {
		t.Fatalf("lr3 %d %v", n, err)
	}
	if n, err := ps.NodeCount("lr4"); err != nil || n != 15 {
		t.Fatalf("lr4 %d %v", n, err)
	}
	if n, err := ps.NodeCount("lr4"); err != nil || n != 15 {
		t.Fatalf("lr4 %d %v", n, err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("Calls %v", r.calls)
	}
	if n, err := ps.NodeCount("lr9"); err != nil || n != 0 {
		t.Fatalf("lr9 %d %v", n, err)
	}
	if _, err := ps.NodeCount("bad"); err == nil {
		t.Fatal("Expected error for bad output")
	}
	if _, err := ps.NodeCount("missing"); err == nil {
		t.Fatal("Expected error for failing sinfo")
	}

	static := NewPartitionSizes(map[string]int{"lr3": 100}, nil)
	if _, err := static.NodeCount("lr4"); err == nil {
		t.Fatal("Expected error without runner")
	}
}

func TestPartitions(t *testing.T) {
	r := &fakeRunner{responses: map[call]string{
		{"sinfo", "-h -o %R"}: "lr4\nlr3*\nlr4\nsavio\n",
	}}
	names, err := NewPartitionSizes(nil, r).Partitions()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"lr3", "lr4", "savio"}) {
		t.Fatalf("Partitions %v", names)
	}
	if _, err := NewPartitionSizes(nil, nil).Partitions(); err == nil {
		t.Fatal("Expected error without runner")
	}
}
