// Abstractions for running subprocesses and capturing their output.

package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// A Runner runs a program to completion and returns its stdout and stderr.  The Slurm commands are
// invoked through this so that tests can substitute canned output.

type Runner interface {
	Run(programPath string, arguments []string) (stdout string, stderr string, err error)
}

// SubprocessRunner runs programs for real, via RunSubprocess.

type SubprocessRunner struct{}

func (SubprocessRunner) Run(programPath string, arguments []string) (string, string, error) {
	return RunSubprocess(programPath, arguments)
}

// Run the program with the arguments, collecting its output and returning it.  If there is an error
// in running the program or the program exits with a nonzero code then an error is returned along
// with stderr and stdout is empty, otherwise stdout and stderr are returned but the assumption is
// that the command exited with code zero.

func RunSubprocess(programPath string, arguments []string) (string, string, error) {
	cmd := exec.Command(programPath, arguments...)
	var stdout strings.Builder
	var stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	errs := stderr.String()
	if err != nil {
		return "", errs, errors.Join(
			fmt.Errorf("While running %s %s", programPath, strings.Join(arguments, " ")),
			err,
		)
	}
	return stdout.String(), errs, nil
}
