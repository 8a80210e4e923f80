// Defaults file handling.
//
// The defaults file is ~/.samse unless -config names another file.  It is an ini file:
//
//   [report]
//   sort=duration
//   fmt=default,state
//   from=2024-01-01
//
//   [partitions]
//   retired=cf
//   known=lr3,lr4,lr5
//   maintenance=MAINT,MAINT*
//   node-counts=lr3:324,lr4:140
//
// All settings are optional.  Lists are comma-separated, and an explicitly empty list (eg
// `retired=`) clears the built-in default.  Values are subject to environment variable expansion.
// Command line options override the file.

package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	ini "github.com/lars-t-hansen/ini"
)

type Config struct {
	Sort        string
	Fmt         string
	From        string
	Retired     []string
	Known       []string
	Maintenance []string
	NodeCounts  map[string]int
}

const DefaultConfigName = ".samse"

var (
	DefaultRetired     = []string{"cf"}
	DefaultMaintenance = []string{"MAINT", "MAINT*"}
)

func DefaultConfig() *Config {
	return &Config{
		Retired:     append([]string(nil), DefaultRetired...),
		Maintenance: append([]string(nil), DefaultMaintenance...),
		NodeCounts:  make(map[string]int),
	}
}

// Returns "" if there is no HOME.

func DefaultConfigFile() string {
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return path.Join(path.Clean(home), DefaultConfigName)
}

// Read the named file.  A missing file yields the defaults unless mustExist is set.

func LoadConfig(filename string, mustExist bool) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	input, err := os.Open(filename)
	if err != nil {
		if !mustExist && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("Failed to open config file %s: %w", filename, err)
	}
	defer input.Close()
	cfg, err := ReadConfig(input)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse config file %s: %w", filename, err)
	}
	return cfg, nil
}

func ReadConfig(input io.Reader) (*Config, error) {
	p := ini.NewParser()
	report := p.AddSection("report")
	sortField := report.AddString("sort")
	fmtField := report.AddString("fmt")
	fromField := report.AddString("from")
	partitions := p.AddSection("partitions")
	retiredField := partitions.AddString("retired")
	knownField := partitions.AddString("known")
	maintenanceField := partitions.AddString("maintenance")
	nodeCountsField := partitions.AddString("node-counts")

	store, err := p.Parse(input)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	str := func(f *ini.Field) (string, bool) {
		if !f.Present(store) {
			return "", false
		}
		return strings.TrimSpace(os.ExpandEnv(f.StringVal(store))), true
	}
	if s, ok := str(sortField); ok {
		cfg.Sort = s
	}
	if s, ok := str(fmtField); ok {
		cfg.Fmt = s
	}
	if s, ok := str(fromField); ok {
		cfg.From = s
	}
	if s, ok := str(retiredField); ok {
		cfg.Retired = SplitList(s)
	}
	if s, ok := str(knownField); ok {
		cfg.Known = SplitList(s)
	}
	if s, ok := str(maintenanceField); ok {
		cfg.Maintenance = SplitList(s)
	}
	if s, ok := str(nodeCountsField); ok {
		for _, item := range SplitList(s) {
			name, count, found := strings.Cut(item, ":")
			name = strings.TrimSpace(name)
			n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 32)
			if !found || name == "" || err != nil {
				return nil, fmt.Errorf("Bad node-counts entry %q, expected partition:count", item)
			}
			cfg.NodeCounts[name] = int(n)
		}
	}
	return cfg, nil
}

// Split a comma-separated list, trimming blanks and dropping empty elements.  The result is
// non-nil.

func SplitList(s string) []string {
	xs := make([]string, 0)
	for _, x := range strings.Split(s, ",") {
		if x = strings.TrimSpace(x); x != "" {
			xs = append(xs, x)
		}
	}
	return xs
}

// Make a set from a list of names, eg for the retired partitions or the maintenance states.

func StringSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
