package status

import (
	"strings"
	"testing"
)

type recorder struct {
	msgs []string
}

func (r *recorder) Debug(m string) error   { r.msgs = append(r.msgs, "debug:"+m); return nil }
func (r *recorder) Info(m string) error    { r.msgs = append(r.msgs, "info:"+m); return nil }
func (r *recorder) Warning(m string) error { r.msgs = append(r.msgs, "warning:"+m); return nil }
func (r *recorder) Err(m string) error     { r.msgs = append(r.msgs, "err:"+m); return nil }
func (r *recorder) Crit(m string) error    { r.msgs = append(r.msgs, "crit:"+m); return nil }

func TestLevels(t *testing.T) {
	var out strings.Builder
	l := NewLogger(LogLevelWarning, &out)
	l.Info("hidden")
	l.Warningf("skipped %d", 3)
	l.Error("bad")
	if s := out.String(); s != "skipped 3\nbad\n" {
		t.Fatalf("Output %q", s)
	}

	out.Reset()
	l.LowerLevelTo(LogLevelInfo)
	l.Info("shown")
	l.LowerLevelTo(LogLevelError)
	l.Info("still shown")
	if s := out.String(); s != "shown\nstill shown\n" {
		t.Fatalf("Output %q", s)
	}
}

func TestUnderlying(t *testing.T) {
	r := new(recorder)
	l := NewLogger(LogLevelDebug, nil)
	l.SetUnderlying(r)
	l.Debug("a")
	l.Infof("%s", "b")
	l.Warning("c")
	l.Errorf("d")
	l.Critical("e")
	want := "debug:a,info:b,warning:c,err:d,crit:e"
	if s := strings.Join(r.msgs, ","); s != want {
		t.Fatalf("Underlying %s", s)
	}
}
