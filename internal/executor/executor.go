/*
Copyright 2026 The Kubernetes-CSI-Addons Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrTimeout is returned when a command did not finish before its timeout
// expired. The command was terminated, but the control plane may still be
// processing the request.
var ErrTimeout = errors.New("command timed out")

// Executor runs a single control-plane command.
type Executor interface {
	// Execute runs the command described by args and returns its standard
	// output. When confirm is set, an affirmative answer is written to the
	// standard input of the command so that confirmation prompts do not
	// block. A command that does not finish within timeout is terminated and
	// ErrTimeout is returned; any other failure is returned as a
	// *CommandError.
	Execute(ctx context.Context, args []string, timeout time.Duration, confirm bool) (string, error)
}

// CommandError describes a command that could not be started or that exited
// with a non-zero status.
type CommandError struct {
	// Command is the command line as it was executed.
	Command string
	// ExitCode is the exit status of the command, -1 if it did not run.
	ExitCode int
	// Stderr holds the diagnostic output of the command.
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("command %q failed with exit code %d: %v", e.Command, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true when err signals an expired command timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

const confirmation = "yes\n"

// input returns the standard input for a command.
func input(confirm bool) io.Reader {
	if confirm {
		return strings.NewReader(confirmation)
	}

	return strings.NewReader("")
}

// withTimeout is context.WithTimeout, except that a non-positive timeout
// leaves the command bounded by the parent context only.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

// interrupted maps the state of the parent and the command context to the
// error returned to the caller, or nil if neither is done.
func interrupted(ctx, execCtx context.Context, command string) error {
	if ctx.Err() != nil {
		return &CommandError{Command: command, ExitCode: -1, Err: ctx.Err()}
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}

	return nil
}
