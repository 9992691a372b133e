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

package main

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/csi-addons/vg-cleanup/internal/executor"
)

// acliClient sets up the executor that runs acli commands, either locally
// or on a CVM over SSH.
type acliClient struct {
	exec executor.Executor
	log  logr.Logger
}

func (c *command) sshConfig() executor.SSHConfig {
	return executor.SSHConfig{
		Host:           c.sshHost,
		User:           c.sshUser,
		KeyFile:        c.sshKey,
		KnownHostsFile: c.sshKnownHosts,
		Binary:         c.cfg.ACLIPath,
	}
}

// validateSSH checks the SSH arguments, if SSH is used at all.
func (c *command) validateSSH() error {
	if c.sshHost == "" {
		return nil
	}
	if err := c.sshConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	return nil
}

// Connect creates the executor.
func (ac *acliClient) Connect(c *command, log logr.Logger) error {
	ac.log = log

	if c.sshHost == "" {
		ac.exec = executor.NewLocal(c.cfg.ACLIPath, log)

		return nil
	}

	exec, err := executor.NewSSH(c.sshConfig(), log)
	if err != nil {
		return fmt.Errorf("failed to set up ssh executor: %w", err)
	}
	ac.exec = exec

	return nil
}
