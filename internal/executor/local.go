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
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/kballard/go-shellquote"
)

// waitDelay bounds how long Wait blocks on the output pipes after the
// command was killed, in case it left children holding them open.
const waitDelay = time.Second * 2

// Local runs control-plane commands as child processes of this program.
type Local struct {
	binary string
	log    logr.Logger
}

// assert on Executor interface
var _ Executor = &Local{}

// NewLocal returns an Executor that runs binary with the given arguments on
// the local host.
func NewLocal(binary string, log logr.Logger) *Local {
	return &Local{
		binary: binary,
		log:    log.WithName("executor"),
	}
}

func (l *Local) Execute(ctx context.Context, args []string, timeout time.Duration, confirm bool) (string, error) {
	command := shellquote.Join(append([]string{l.binary}, args...)...)

	execCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(execCtx, l.binary, args...)
	cmd.Stdin = input(confirm)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	l.log.Info("Executing command", "command", command, "confirm", confirm, "timeout", timeout.String())

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	if ierr := interrupted(ctx, execCtx, command); ierr != nil {
		l.log.V(1).Info("Command interrupted", "command", command, "error", ierr.Error())
		return stdout.String(), ierr
	}

	cmdErr := &CommandError{
		Command:  command,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}

	return stdout.String(), cmdErr
}
