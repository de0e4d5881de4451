package executil

import (
	"context"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// RecordingExecutor captures commands for testing.
// Responses are resolved by the Respond hook when set; otherwise by the
// Outputs/Errors maps keyed on the command's first argument (the subcommand
// for git and jj invocations), falling back to the command name itself.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Respond, when non-nil, computes the response for every call.
	Respond func(dir, cmd string, args []string) ([]byte, error)

	// Outputs maps subcommand names to their stdout.
	Outputs map[string][]byte

	// Errors maps subcommand names to their error.
	Errors map[string]error
}

// Output records the command and returns the configured response.
func (e *RecordingExecutor) Output(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{
		Dir:  dir,
		Cmd:  cmd,
		Args: args,
	})

	if e.Respond != nil {
		return e.Respond(dir, cmd, args)
	}

	key := cmd
	if len(args) > 0 {
		key = args[0]
	}

	var out []byte
	var err error
	if e.Outputs != nil {
		out = e.Outputs[key]
	}
	if e.Errors != nil {
		err = e.Errors[key]
	}
	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
