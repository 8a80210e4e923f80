package command

import (
	"errors"
	"flag"
	"fmt"
	"time"

	. "samse/common"
	"samse/report"
	"samse/status"
	. "samse/table"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// -v, -syslog

// The tag samse logs under in the syslog.
const logTag = "samse"

type LoggingArgs struct {
	Verbose bool
	Syslog  bool
}

func (la *LoggingArgs) Add(fs *flag.FlagSet) {
	fs.BoolVar(&la.Verbose, "v", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&la.Verbose, "verbose", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&la.Syslog, "syslog", false,
		"Also log to the syslog with tag '"+logTag+"', eg when run from cron")
}

// Apply the options to `log`.  `dial` opens the syslog, normally it is status.DialSyslog.

func (la *LoggingArgs) SetupLogging(
	log status.Logger,
	dial func(tag string) (status.UnderlyingLogger, error),
) error {
	if la.Verbose {
		log.LowerLevelTo(status.LogLevelInfo)
	}
	if la.Syslog {
		underlying, err := dial(logTag)
		if err != nil {
			return fmt.Errorf("Failed to open syslog: %w", err)
		}
		log.SetUnderlying(underlying)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// -config

type ConfigFileArgs struct {
	ConfigFilename string
}

func (cfa *ConfigFileArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&cfa.ConfigFilename, "config", "",
		"Read defaults from `filename` (default ~/"+DefaultConfigName+" if it exists)")
}

// The file to read and whether it must exist.
func (cfa *ConfigFileArgs) ConfigFile() (string, bool) {
	if cfa.ConfigFilename != "" {
		return cfa.ConfigFilename, true
	}
	return DefaultConfigFile(), false
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Where the events come from: the sacctmgr time window, or an input file.

type SourceArgs struct {
	InputFile string

	// Positional, passed on to sacctmgr
	Start string
	End   string
}

func (s *SourceArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&s.InputFile, "input", "",
		"Read sacctmgr output from `filename` instead of running sacctmgr")
}

func (s *SourceArgs) SetRestArguments(args []string) error {
	if len(args) > 2 {
		return errors.New("At most two arguments, start and end")
	}
	if len(args) > 0 {
		s.Start = args[0]
	}
	if len(args) > 1 {
		s.End = args[1]
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// -fmt

type FormatArgs struct {
	Fmt string
}

func (fa *FormatArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&fa.Fmt, "fmt", "",
		"Select `field,...` and format for the output, try -fmt=help")
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// The report command proper.

type ReportCommand struct {
	LoggingArgs
	ConfigFileArgs
	SourceArgs
	FormatArgs

	Sort      string
	Stats     bool
	Partition string

	// Set by ApplyConfig and Validate
	config *Config
	policy report.SortPolicy
}

func (rc *ReportCommand) Summary() []string {
	return []string{
		"List node outage events recorded by Slurm, or summarize the time lost",
		"to them per partition.",
	}
}

func (rc *ReportCommand) Add(fs *flag.FlagSet) {
	rc.LoggingArgs.Add(fs)
	rc.ConfigFileArgs.Add(fs)
	rc.SourceArgs.Add(fs)
	rc.FormatArgs.Add(fs)
	fs.StringVar(&rc.Sort, "sort", "",
		"Sort the listing by `policy`: duration, name, down_date, reason (default)")
	fs.BoolVar(&rc.Stats, "stats", false, "Print per-partition statistics instead of the listing")
	fs.StringVar(&rc.Partition, "p", "", "Show only `partition`")
}

// Fill in settings not given on the command line from the defaults file.

func (rc *ReportCommand) ApplyConfig(cfg *Config) {
	rc.config = cfg
	if rc.Sort == "" {
		rc.Sort = cfg.Sort
	}
	if rc.Fmt == "" {
		rc.Fmt = cfg.Fmt
	}
	if rc.Start == "" && cfg.From != "" {
		rc.Start = "start=" + cfg.From
	}
}

// The start argument is checked only for -stats, where it is the start of the reporting window.
// Otherwise it is only passed on to sacctmgr, which accepts more forms, eg start=now-7days.

func (rc *ReportCommand) Validate() error {
	if rc.config == nil {
		rc.config = DefaultConfig()
	}
	var e1, e2, e3 error
	rc.policy, e1 = report.ParseSortPolicy(rc.Sort)
	if rc.Fmt != "help" {
		e2 = report.ValidateFormat(rc.Fmt, rc.Stats)
	}
	if rc.Stats {
		if _, err := ReportingStart(rc.Start, time.Now()); err != nil {
			e3 = fmt.Errorf("Bad start argument: %w", err)
		}
	}
	return errors.Join(e1, e2, e3)
}

func (rc *ReportCommand) MaybeFormatHelp() *FormatHelp {
	return report.MaybeFormatHelp(rc.Fmt, rc.Stats)
}

func (rc *ReportCommand) Config() *Config {
	return rc.config
}

func (rc *ReportCommand) Policy() report.SortPolicy {
	return rc.policy
}
