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
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/kballard/go-shellquote"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultSSHPort = "22"

// SSHConfig holds the options to reach the controller VM that runs the
// control-plane CLI.
type SSHConfig struct {
	// Host is the address of the controller VM, optionally with a port.
	Host string
	User string
	// KeyFile is the path of the private key used for authentication.
	KeyFile string
	// KnownHostsFile is the path of the known_hosts file used to verify
	// the host key of the controller VM.
	KnownHostsFile string
	// Binary is the control-plane CLI on the remote host.
	Binary string
}

// Validate checks that all required options are set.
func (c SSHConfig) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("ssh host is not set")
	case c.User == "":
		return errors.New("ssh user is not set")
	case c.KeyFile == "":
		return errors.New("ssh key file is not set")
	case c.KnownHostsFile == "":
		return errors.New("ssh known hosts file is not set")
	case c.Binary == "":
		return errors.New("remote binary is not set")
	}

	return nil
}

// address returns Host with the default SSH port added when it has none.
func (c SSHConfig) address() string {
	if _, _, err := net.SplitHostPort(c.Host); err == nil {
		return c.Host
	}

	return net.JoinHostPort(c.Host, defaultSSHPort)
}

// SSH runs control-plane commands on a remote host. A new connection is
// established for every command.
type SSH struct {
	addr         string
	binary       string
	clientConfig *ssh.ClientConfig
	log          logr.Logger
}

// assert on Executor interface
var _ Executor = &SSH{}

// NewSSH returns an Executor that runs commands on the host described by
// cfg.
func NewSSH(cfg SSHConfig, log logr.Logger) (*SSH, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key %q: %w", cfg.KeyFile, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh key %q: %w", cfg.KeyFile, err)
	}

	hostKeyCallback, err := knownhosts.New(cfg.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts %q: %w", cfg.KnownHostsFile, err)
	}

	return &SSH{
		addr:   cfg.address(),
		binary: cfg.Binary,
		clientConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeyCallback,
		},
		log: log.WithName("executor").WithValues("host", cfg.address()),
	}, nil
}

func (s *SSH) Execute(ctx context.Context, args []string, timeout time.Duration, confirm bool) (string, error) {
	command := shellquote.Join(append([]string{s.binary}, args...)...)

	execCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	s.log.Info("Executing command", "command", command, "confirm", confirm, "timeout", timeout.String())

	client, err := s.dial(execCtx)
	if err != nil {
		// nothing was submitted, so an expired timeout is a plain failure here
		return "", &CommandError{Command: command, ExitCode: -1, Err: err}
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", &CommandError{Command: command, ExitCode: -1, Err: err}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdin = input(confirm)
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err = session.Start(command); err != nil {
		return "", &CommandError{Command: command, ExitCode: -1, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err = <-done:
	case <-execCtx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = client.Close()
		<-done

		ierr := interrupted(ctx, execCtx, command)
		s.log.V(1).Info("Command interrupted", "command", command, "error", ierr.Error())
		return "", ierr
	}

	if err != nil {
		cmdErr := &CommandError{
			Command:  command,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitStatus()
		}

		return stdout.String(), cmdErr
	}

	return stdout.String(), nil
}

// dial connects and authenticates to the remote host. The handshake is
// bounded by the deadline of ctx.
func (s *SSH) dial(ctx context.Context) (*ssh.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %q: %w", s.addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, s.addr, s.clientConfig)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake with %q failed: %w", s.addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(c, chans, reqs), nil
}
