package vcs

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Sentinel errors for expected, recoverable conditions. Callers classify with
// errors.Is; anything else is an infrastructure failure.
var (
	// ErrInvalidRef means a reference string did not resolve to a commit.
	ErrInvalidRef = errors.New("invalid revision")

	// ErrFileNotFound means a path does not exist at the requested revision.
	ErrFileNotFound = errors.New("file not found at revision")

	// ErrNotARepository means no .jj or .git directory was found walking up
	// from the working directory.
	ErrNotARepository = errors.New("not a git or jujutsu repository")
)

// CommandError reports a VCS subprocess that could not run or exited with
// failure. The wrapped error carries the stderr excerpt captured by executil.
type CommandError struct {
	Name string
	Args []string
	Err  error
}

func (e *CommandError) Error() string {
	sub := e.Name
	if len(e.Args) > 0 {
		sub = e.Name + " " + e.Args[0]
	}
	return fmt.Sprintf("%s: %v", sub, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether err is an expected per-operation failure that
// should be surfaced without aborting the session. Command and IO failures
// are not recoverable: fatal at startup, skipped during live reload.
func Recoverable(err error) bool {
	return errors.Is(err, ErrInvalidRef) || errors.Is(err, ErrFileNotFound)
}

// exitFailure reports whether err came from a subprocess that ran and exited
// nonzero, as opposed to one that could not be started at all. Backends
// downgrade exit failures of lookup commands to recoverable errors; a
// missing binary stays fatal.
func exitFailure(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// invalidRef builds an ErrInvalidRef with the offending reference attached.
func invalidRef(ref, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: %s", ErrInvalidRef, ref)
	}
	return fmt.Errorf("%w: %s (%s)", ErrInvalidRef, ref, reason)
}

// validateRefFormat rejects references that look like flags before any
// process is spawned.
func validateRefFormat(ref string) error {
	if strings.HasPrefix(strings.TrimSpace(ref), "-") {
		return invalidRef(ref, "references cannot start with '-'")
	}
	return nil
}
