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
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/kballard/go-shellquote"

	"github.com/csi-addons/vg-cleanup/internal/acli"
	"github.com/csi-addons/vg-cleanup/internal/executor"
)

// ActionKind is the kind of mutating action issued against a volume group.
type ActionKind int

const (
	// DetachConsumer detaches a VM from the volume group.
	DetachConsumer ActionKind = iota
	// DeleteSubResource deletes a disk of the volume group by index.
	DeleteSubResource
	// DeleteVolumeGroup deletes the volume group.
	DeleteVolumeGroup
)

// Action is a single mutating control-plane operation.
type Action struct {
	Kind        ActionKind
	VolumeGroup string
	// Consumer is set for DetachConsumer.
	Consumer string
	// Index is set for DeleteSubResource.
	Index int
}

// Command returns the control-plane command for the action.
func (a Action) Command() []string {
	switch a.Kind {
	case DetachConsumer:
		return acli.DetachFromVMCommand(a.VolumeGroup, a.Consumer)
	case DeleteSubResource:
		return acli.DiskDeleteCommand(a.VolumeGroup, a.Index)
	default:
		return acli.DeleteCommand(a.VolumeGroup)
	}
}

func (a Action) String() string {
	switch a.Kind {
	case DetachConsumer:
		return fmt.Sprintf("detach VM %s from %s", a.Consumer, a.VolumeGroup)
	case DeleteSubResource:
		return fmt.Sprintf("delete disk index %d from %s", a.Index, a.VolumeGroup)
	default:
		return fmt.Sprintf("delete volume group %s", a.VolumeGroup)
	}
}

// Performer carries out mutating actions. The orchestrator issues every
// detach and delete through a Performer, so that a dry run only needs to
// swap the implementation.
type Performer interface {
	// Perform runs the action. A nil error or an error matching
	// executor.ErrTimeout means the action was submitted.
	Perform(ctx context.Context, a Action) error
}

// LivePerformer runs actions against the control plane.
type LivePerformer struct {
	exec    executor.Executor
	timeout time.Duration
}

// assert on Performer interface
var _ Performer = &LivePerformer{}

// NewLivePerformer returns a Performer that executes every action with the
// given timeout, answering confirmation prompts.
func NewLivePerformer(exec executor.Executor, timeout time.Duration) *LivePerformer {
	return &LivePerformer{
		exec:    exec,
		timeout: timeout,
	}
}

func (p *LivePerformer) Perform(ctx context.Context, a Action) error {
	_, err := p.exec.Execute(ctx, a.Command(), p.timeout, true)

	return err
}

// DryRunPerformer only logs the command an action would execute.
type DryRunPerformer struct {
	binary string
	log    logr.Logger
}

// assert on Performer interface
var _ Performer = &DryRunPerformer{}

// NewDryRunPerformer returns a Performer without side effects. binary is
// only used to render the command in the log.
func NewDryRunPerformer(binary string, log logr.Logger) *DryRunPerformer {
	return &DryRunPerformer{
		binary: binary,
		log:    log,
	}
}

func (p *DryRunPerformer) Perform(_ context.Context, a Action) error {
	command := shellquote.Join(append([]string{p.binary}, a.Command()...)...)
	p.log.Info(fmt.Sprintf(DryRunWouldExecute, command))

	return nil
}
