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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/csi-addons/vg-cleanup/internal/metrics"
	"github.com/csi-addons/vg-cleanup/internal/teardown"
)

// stdout receives the output of the List and Inspect operations.
var stdout io.Writer = os.Stdout

// errVolumeGroupsFailed is returned with --fail-on-error when at least one
// volume group was not deleted.
var errVolumeGroupsFailed = errors.New("volume groups were not deleted")

// teardownOptions builds and validates the options of a run.
func (c *command) teardownOptions() (teardown.Options, error) {
	opts := teardown.Options{
		Prefix:                c.prefix,
		Force:                 c.force,
		DryRun:                c.dryRun,
		DescribeFailurePolicy: c.cfg.DescribeFailurePolicy,
		Timeout:               c.cfg.Timeout,
		ActionTimeout:         c.cfg.ActionTimeout,
		Binary:                c.cfg.ACLIPath,
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}

	return opts, nil
}

// Teardown deletes all volume groups matching the prefix.
type Teardown struct {
	// inherit Connect() from type acliClient
	acliClient

	opts         teardown.Options
	failOnError  bool
	metricsFile  string
	scheduleSpec string
	schedule     cron.Schedule
}

var _ = registerOperation("Teardown", &Teardown{})

func (t *Teardown) Init(c *command) error {
	opts, err := c.teardownOptions()
	if err != nil {
		return err
	}
	if err = c.validateSSH(); err != nil {
		return err
	}

	if c.schedule != "" {
		t.schedule, err = cron.ParseStandard(c.schedule)
		if err != nil {
			return fmt.Errorf("%w: invalid schedule %q: %v", errUsage, c.schedule, err)
		}
		t.scheduleSpec = c.schedule
	}

	t.opts = opts
	t.failOnError = c.cfg.FailOnError
	t.metricsFile = c.metricsFile

	return nil
}

func (t *Teardown) Execute(ctx context.Context) error {
	orch, err := teardown.New(t.opts, t.exec, t.log)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if t.metricsFile != "" {
		m = metrics.New(t.opts.Prefix, t.opts.DryRun)
	}

	if t.schedule == nil {
		return t.runOnce(ctx, orch, m)
	}

	return t.runScheduled(ctx, orch, m)
}

func (t *Teardown) runOnce(ctx context.Context, orch *teardown.Orchestrator, m *metrics.Metrics) error {
	start := time.Now()
	summary := orch.Run(ctx)

	if m != nil {
		m.Observe(summary, time.Since(start), time.Now())
		if err := m.WriteToTextfile(t.metricsFile); err != nil {
			t.log.Error(err, "failed to write metrics")
		}
	}

	if t.failOnError && summary.HasFailures() {
		return fmt.Errorf("%d of %d %w", summary.Failed, summary.Matched, errVolumeGroupsFailed)
	}

	return nil
}

// runScheduled starts a run at every activation of the schedule until ctx
// is done. A run still in progress makes the next activation a no-op.
func (t *Teardown) runScheduled(ctx context.Context, orch *teardown.Orchestrator, m *metrics.Metrics) error {
	log := t.log.WithName("scheduler")
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	c.Schedule(t.schedule, cron.FuncJob(func() {
		if err := t.runOnce(ctx, orch, m); err != nil {
			log.Error(err, "scheduled run failed")
		}
	}))

	log.Info("Starting scheduled teardown", "schedule", t.scheduleSpec)
	c.Start()
	<-ctx.Done()

	log.Info("Stopping scheduled teardown, waiting for the running teardown to finish")
	<-c.Stop().Done()

	return nil
}

// List prints the volume groups matching the prefix.
type List struct {
	// inherit Connect() from type acliClient
	acliClient

	opts teardown.Options
}

var _ = registerOperation("List", &List{})

func (l *List) Init(c *command) error {
	opts, err := c.teardownOptions()
	if err != nil {
		return err
	}
	l.opts = opts

	return c.validateSSH()
}

func (l *List) Execute(ctx context.Context) error {
	orch, err := teardown.New(l.opts, l.exec, l.log)
	if err != nil {
		return err
	}

	_, matched := orch.Candidates(ctx)
	for _, name := range matched {
		fmt.Fprintln(stdout, name)
	}

	return nil
}

// Inspect prints what is attached to a single volume group.
type Inspect struct {
	// inherit Connect() from type acliClient
	acliClient

	volumeGroup string
	timeout     time.Duration
}

var _ = registerOperation("Inspect", &Inspect{})

func (i *Inspect) Init(c *command) error {
	if c.volumeGroup == "" {
		return fmt.Errorf("%w: volume-group not set", errUsage)
	}
	i.volumeGroup = c.volumeGroup
	i.timeout = c.cfg.Timeout

	return c.validateSSH()
}

func (i *Inspect) Execute(ctx context.Context) error {
	inventory := teardown.NewInventory(i.exec, i.timeout, false, i.log)
	desc, err := inventory.Describe(ctx, i.volumeGroup)
	if err != nil {
		return err
	}

	rawMode := desc.RawMode
	if rawMode == "" {
		rawMode = "<not reported>"
	}
	fmt.Fprintf(stdout, "volume group: %s\n", i.volumeGroup)
	fmt.Fprintf(stdout, "attachment type: %s (%s)\n", rawMode, desc.Mode)
	fmt.Fprintf(stdout, "attached VMs: %s\n", strings.Join(desc.Consumers, ", "))
	fmt.Fprintf(stdout, "disk indexes: %v\n", desc.SubResources)

	return nil
}
