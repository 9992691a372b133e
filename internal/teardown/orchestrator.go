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
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/csi-addons/vg-cleanup/internal/acli"
	"github.com/csi-addons/vg-cleanup/internal/executor"
	"github.com/csi-addons/vg-cleanup/internal/util"
)

var (
	// ErrPrefixRequired is returned for a run without a volume group prefix.
	ErrPrefixRequired = errors.New("volume group prefix is required")
	// ErrInvalidDiskIndex is reported for a disk index that does not fit an
	// int and therefore can not be deleted.
	ErrInvalidDiskIndex = errors.New("disk index out of range")
)

const dryRunPrefix = "[DRY RUN] "

// Options configures a teardown run.
type Options struct {
	// Prefix selects the volume groups to tear down.
	Prefix string
	// Force detaches attached VMs instead of skipping the volume group.
	Force bool
	// DryRun logs mutating commands instead of executing them.
	DryRun bool
	// DescribeFailurePolicy decides what to do with a volume group that
	// cannot be described.
	DescribeFailurePolicy util.DescribeFailurePolicy
	// Timeout bounds listing and describing.
	Timeout time.Duration
	// ActionTimeout bounds every detach and delete command.
	ActionTimeout time.Duration
	// Binary is the control-plane CLI, only used for dry-run logging.
	Binary string
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if o.Prefix == "" {
		return ErrPrefixRequired
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}
	if o.ActionTimeout <= 0 {
		return fmt.Errorf("action timeout must be positive, got %s", o.ActionTimeout)
	}
	if o.DescribeFailurePolicy == "" {
		o.DescribeFailurePolicy = util.DescribeFailureProceed
	}
	if _, err := util.ParseDescribeFailurePolicy(string(o.DescribeFailurePolicy)); err != nil {
		return err
	}
	if o.Binary == "" {
		o.Binary = "acli"
	}

	return nil
}

// Orchestrator tears down volume groups one at a time.
type Orchestrator struct {
	opts      Options
	inventory *Inventory
	performer Performer
	log       logr.Logger
}

// NewOrchestrator returns an Orchestrator reading through inventory and
// mutating through performer. The options must have been validated.
func NewOrchestrator(opts Options, inventory *Inventory, performer Performer, log logr.Logger) *Orchestrator {
	return &Orchestrator{
		opts:      opts,
		inventory: inventory,
		performer: performer,
		log:       log,
	}
}

// New validates opts and returns an Orchestrator running its commands
// through exec. In dry-run mode no mutating command reaches exec.
func New(opts Options, exec executor.Executor, log logr.Logger) (*Orchestrator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log = log.WithName("teardown")
	inventory := NewInventory(exec, opts.Timeout, opts.DryRun, log)

	var performer Performer
	if opts.DryRun {
		performer = NewDryRunPerformer(opts.Binary, log)
	} else {
		performer = NewLivePerformer(exec, opts.ActionTimeout)
	}

	return NewOrchestrator(opts, inventory, performer, log), nil
}

// Candidates lists the volume groups and returns every listed name
// together with the names matching the prefix. Matches keep the listing
// order and are unique.
func (o *Orchestrator) Candidates(ctx context.Context) ([]string, []string) {
	listed := o.inventory.List(ctx)

	seen := make(map[string]struct{}, len(listed))
	matched := []string{}
	for _, name := range listed {
		if !strings.HasPrefix(name, o.opts.Prefix) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		matched = append(matched, name)
	}

	if len(matched) == 0 {
		o.log.Info(fmt.Sprintf(NoMatchingVGs, o.opts.Prefix))
	} else {
		o.log.Info(fmt.Sprintf(FoundMatchingVGs, len(matched), o.opts.Prefix))
	}

	return listed, matched
}

// Describe returns the extracted description of a single volume group.
func (o *Orchestrator) Describe(ctx context.Context, name string) (acli.Description, error) {
	return o.inventory.Describe(ctx, name)
}

// Run tears down every volume group matching the prefix and returns the
// summary of the run. Every matching volume group gets exactly one
// outcome. A cancelled context stops the run before the next volume group.
func (o *Orchestrator) Run(ctx context.Context) Summary {
	if o.opts.DryRun {
		o.log.Info(RunModeDryRun)
	} else {
		o.log.Info(RunModeLive)
	}
	if o.opts.Force {
		warning(o.log, ForceModeEnabled)
	}
	o.log.Info(fmt.Sprintf(TargetPrefix, o.opts.Prefix))
	o.log.V(1).Info(fmt.Sprintf(CommandTimeout, o.opts.Timeout, o.opts.ActionTimeout))

	recorder := NewRecorder(o.opts.Prefix, o.opts.DryRun)
	listed, candidates := o.Candidates(ctx)
	recorder.SetCandidates(len(listed), len(candidates))

	interrupted := false
	for i, name := range candidates {
		if !interrupted && ctx.Err() != nil {
			interrupted = true
			warning(o.log, fmt.Sprintf(RunInterrupted, len(candidates)-i))
		}

		outcome := Interrupted
		if !interrupted {
			outcome = o.teardown(ctx, name)
		}
		if err := recorder.Record(name, outcome); err != nil {
			o.log.Error(err, fmt.Sprintf(FailedToRecordOutcome, name))
		}
	}

	summary := recorder.Summary()
	LogSummary(o.log, summary)

	return summary
}

// teardown runs the state machine of a single volume group: inspect, gate
// on attached VMs, detach VMs, detach disks, delete.
func (o *Orchestrator) teardown(ctx context.Context, name string) Outcome {
	log := o.log.WithValues("volumeGroup", name)
	log.Info(fmt.Sprintf(ProcessVG, name))

	desc, ok := o.describe(ctx, log, name, consumerStage)
	if ctx.Err() != nil {
		return Interrupted
	}
	if !ok {
		return SkippedDescribeFailed
	}
	if desc.RawMode != "" {
		log.V(1).Info(fmt.Sprintf(AttachmentTypeReported, name, desc.RawMode), "mode", desc.Mode.String())
	}

	if desc.HasConsumers() {
		vms := strings.Join(desc.Consumers, ", ")
		o.info(log, fmt.Sprintf(FoundAttachedVMs, name, vms))
		if !o.opts.Force {
			warning(log, fmt.Sprintf(VMsAttachedSkipping, name, vms))

			return SkippedConsumersAttached
		}
		warning(log, fmt.Sprintf(VMsAttachedForcing, name, vms))

		for _, vm := range desc.Consumers {
			a := Action{Kind: DetachConsumer, VolumeGroup: name, Consumer: vm}
			if err := o.perform(ctx, log, a); err != nil {
				if ctx.Err() != nil {
					return Interrupted
				}
				log.Error(err, fmt.Sprintf(FailedToDetachVMs, name))

				return FailedDetachConsumers
			}
			o.info(log, fmt.Sprintf(DetachedVM, vm, name))
		}
	} else {
		log.Info(fmt.Sprintf(NoVMsToDetach, name))
	}

	// Detaching VMs may change the disk list, describe again.
	desc, ok = o.describe(ctx, log, name, subResourceStage)
	if ctx.Err() != nil {
		return Interrupted
	}
	if !ok {
		return SkippedDescribeFailed
	}

	disks := len(desc.SubResources) + len(desc.InvalidIndexes)
	if disks == 0 {
		log.Info(fmt.Sprintf(NoDisksToDetach, name))
	} else {
		o.info(log, fmt.Sprintf(FoundDisks, disks, name))
	}

	var errs []error
	for _, index := range desc.InvalidIndexes {
		err := fmt.Errorf("disk index %s of %s: %w", index, name, ErrInvalidDiskIndex)
		log.Error(err, fmt.Sprintf(InvalidDiskIndex, index, name))
		errs = append(errs, err)
	}
	for _, index := range desc.SubResources {
		a := Action{Kind: DeleteSubResource, VolumeGroup: name, Index: index}
		if err := o.perform(ctx, log, a); err != nil {
			errs = append(errs, err)

			continue
		}
		o.info(log, fmt.Sprintf(DetachedDisk, index, name))
	}
	if ctx.Err() != nil {
		return Interrupted
	}
	if err := utilerrors.NewAggregate(errs); err != nil {
		log.Error(err, fmt.Sprintf(FailedToDetachDisks, name))

		return FailedDetachSubResources
	}

	if err := o.perform(ctx, log, Action{Kind: DeleteVolumeGroup, VolumeGroup: name}); err != nil {
		if ctx.Err() != nil {
			return Interrupted
		}
		log.Error(err, fmt.Sprintf(FailedToDeleteVG, name))

		return FailedDelete
	}
	o.info(log, fmt.Sprintf(DeletedVG, name))

	return Succeeded
}

// describe returns a fresh description of the volume group for the given
// stage. false means the volume group must be skipped.
func (o *Orchestrator) describe(ctx context.Context, log logr.Logger, name string, s stage) (acli.Description, bool) {
	desc, err := o.inventory.Describe(ctx, name)
	if err == nil {
		return desc, true
	}
	if ctx.Err() != nil {
		log.V(1).Info(fmt.Sprintf(DescribeInterrupted, name), "stage", s.String())

		return acli.Description{}, false
	}

	if o.opts.DryRun {
		log.Info(fmt.Sprintf(DryRunSimulatedDescribe, name), "stage", s.String(), "reason", util.GetErrorMessage(err))

		return simulatedDescription(s), true
	}

	if o.opts.DescribeFailurePolicy == util.DescribeFailureSkip {
		log.Error(err, fmt.Sprintf(FailedToDescribeVG, name), "stage", s.String())

		return acli.Description{}, false
	}
	warning(log, fmt.Sprintf(DescribeFailedProceeding, name), "stage", s.String(), "reason", util.GetErrorMessage(err))

	return acli.Description{}, true
}

// perform runs a mutating action. A timed out action was submitted and is
// treated as done.
func (o *Orchestrator) perform(ctx context.Context, log logr.Logger, a Action) error {
	err := o.performer.Perform(ctx, a)
	switch {
	case err == nil:
		return nil
	case executor.IsTimeout(err):
		warning(log, fmt.Sprintf(ActionTimedOut, a))

		return nil
	default:
		log.Error(err, fmt.Sprintf(FailedToPerform, a), "reason", util.GetErrorMessage(err))

		return fmt.Errorf("failed to %s: %w", a, err)
	}
}

// info logs a progress message, marked as simulated in a dry run.
func (o *Orchestrator) info(log logr.Logger, msg string) {
	if o.opts.DryRun {
		msg = dryRunPrefix + msg
	}
	log.Info(msg)
}

// warning logs msg on the info stream with a warning severity.
func warning(log logr.Logger, msg string, keysAndValues ...interface{}) {
	log.Info(msg, append([]interface{}{"severity", "warning"}, keysAndValues...)...)
}
