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

package teardown

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/csi-addons/vg-cleanup/internal/acli"
	"github.com/csi-addons/vg-cleanup/internal/executor"
)

// ErrEmptyResponse is returned when the control plane answers a read with
// no output at all.
var ErrEmptyResponse = errors.New("empty response from control plane")

// Inventory runs the read-only control-plane commands.
type Inventory struct {
	exec    executor.Executor
	timeout time.Duration
	dryRun  bool
	log     logr.Logger
}

// NewInventory returns an Inventory that runs reads with the given timeout.
// In dry-run mode an unavailable volume group list is replaced by a
// simulated one.
func NewInventory(exec executor.Executor, timeout time.Duration, dryRun bool, log logr.Logger) *Inventory {
	return &Inventory{
		exec:    exec,
		timeout: timeout,
		dryRun:  dryRun,
		log:     log,
	}
}

// List returns the names of all volume groups. A failed listing is logged
// and yields an empty list.
func (i *Inventory) List(ctx context.Context) []string {
	i.log.Info(ListVGs)

	output, err := i.exec.Execute(ctx, acli.ListCommand(), i.timeout, false)
	if err == nil && strings.TrimSpace(output) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		if i.dryRun && ctx.Err() == nil {
			i.log.Info(DryRunUsingSimulatedVGs)

			return simulatedVolumeGroups()
		}
		i.log.Error(err, FailedToListVGs)

		return nil
	}

	names := acli.ParseVolumeGroupList(output)
	i.log.Info(fmt.Sprintf(FoundVGs, len(names)))

	return names
}

// Describe runs vg.get for the volume group and extracts its attachments
// and disks.
func (i *Inventory) Describe(ctx context.Context, name string) (acli.Description, error) {
	output, err := i.exec.Execute(ctx, acli.GetCommand(name), i.timeout, false)
	if err != nil {
		return acli.Description{}, fmt.Errorf("failed to describe volume group %q: %w", name, err)
	}
	if strings.TrimSpace(output) == "" {
		return acli.Description{}, fmt.Errorf("failed to describe volume group %q: %w", name, ErrEmptyResponse)
	}

	return acli.ParseDescription(output), nil
}
