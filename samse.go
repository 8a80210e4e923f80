// `samse` -- Summarize node outage events recorded by Slurm
//
// Usage: samse [options] [start=YYYY-MM-DD [end=YYYY-MM-DD]]
//
// Runs `sacctmgr show event` for the window and prints the outage events, or with -stats, the
// number of outages and the percentage of node time lost per partition since the start of the
// window (the first of the current month by default).  Run `samse -h` for the options.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"samse/command"
	. "samse/common"
	"samse/process"
	"samse/report"
	"samse/status"
	. "samse/table"
)

// v0.1.0 - one tool from the several event scripts

const SamseVersion = "0.1.0"

func main() {
	cmd := commandLine()
	err := cmd.Perform(os.Stdout, process.SubprocessRunner{}, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commandLine() *command.ReportCommand {
	out := flag.CommandLine.Output()
	cmd := new(command.ReportCommand)

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var version bool
	fs.BoolVar(&version, "version", false, "Print the version and exit")
	cmd.Add(fs)
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [options] [start [end]]\n\n", os.Args[0])
		for _, s := range cmd.Summary() {
			fmt.Fprintln(out, "  ", s)
		}
		fmt.Fprintln(out, "\nOptions:")
		fs.PrintDefaults()
		fmt.Fprintln(out, "  start, end\n    \tWindow passed to sacctmgr, eg start=2024-01-01 end=2024-02-01")
		fmt.Fprintf(out, "\nValid sort policies: %v\n", report.SortPolicyNames())
	}
	fs.Parse(os.Args[1:])

	if version {
		fmt.Printf("samse version(%s)\n", SamseVersion)
		os.Exit(0)
	}
	if err := cmd.SetupLogging(Log, status.DialSyslog); err != nil {
		fmt.Fprintln(out, err)
		os.Exit(1)
	}

	if err := cmd.SetRestArguments(fs.Args()); err != nil {
		fmt.Fprintf(out, "Bad arguments, try -h\n%v\n", err)
		os.Exit(2)
	}

	cfgFile, mustExist := cmd.ConfigFile()
	cfg, err := LoadConfig(cfgFile, mustExist)
	if err != nil {
		fmt.Fprintln(out, err)
		os.Exit(2)
	}
	cmd.ApplyConfig(cfg)

	if h := cmd.MaybeFormatHelp(); h != nil {
		PrintFormatHelp(out, h)
		os.Exit(0)
	}

	if err := cmd.Validate(); err != nil {
		if errors.Is(err, report.ErrUnknownSortPolicy) {
			fmt.Fprintln(out, err)
		} else {
			fmt.Fprintf(out, "Bad arguments, try -h\n%v\n", err)
		}
		os.Exit(2)
	}

	return cmd
}
