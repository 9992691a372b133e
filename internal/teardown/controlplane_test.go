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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/csi-addons/vg-cleanup/internal/acli"
	"github.com/csi-addons/vg-cleanup/internal/executor"
	"github.com/csi-addons/vg-cleanup/internal/executor/fake"
)

// testVolumeGroup is the state of a volume group in the fake control plane.
type testVolumeGroup struct {
	vms   []string
	disks []int
}

// call is a single command received by the fake control plane.
type call struct {
	args    []string
	timeout time.Duration
	confirm bool
}

// controlPlane is an in-memory acli. Mutations change its state, so a
// second run observes the effect of the first.
type controlPlane struct {
	mu      sync.Mutex
	names   []string
	vgs     map[string]*testVolumeGroup
	listErr error
	// listOutput replaces the rendered vg.list output when set.
	listOutput *string
	// descriptions replaces the rendered vg.get output of a volume group.
	descriptions map[string]string
	// errs maps a command line to the error it returns.
	errs  map[string]error
	calls []call
	// hook runs before every command.
	hook func(args []string)
}

func newControlPlane() *controlPlane {
	return &controlPlane{
		vgs:          map[string]*testVolumeGroup{},
		descriptions: map[string]string{},
		errs:         map[string]error{},
	}
}

func (cp *controlPlane) add(name string, vms []string, disks ...int) *controlPlane {
	cp.names = append(cp.names, name)
	cp.vgs[name] = &testVolumeGroup{vms: vms, disks: disks}

	return cp
}

// failWith makes the command line fail with a non-zero exit code.
func (cp *controlPlane) failWith(args []string, stderr string) *controlPlane {
	cp.errs[strings.Join(args, " ")] = &executor.CommandError{
		Command:  "acli " + strings.Join(args, " "),
		ExitCode: 1,
		Stderr:   stderr,
		Err:      errors.New("exit status 1"),
	}

	return cp
}

// cancelOn calls cancel when the command line is received and fails it the
// way an executor fails a command whose context was cancelled.
func (cp *controlPlane) cancelOn(args []string, cancel func()) *controlPlane {
	line := strings.Join(args, " ")
	cp.errs[line] = &executor.CommandError{
		Command:  "acli " + line,
		ExitCode: -1,
		Err:      context.Canceled,
	}
	cp.hook = func(got []string) {
		if strings.Join(got, " ") == line {
			cancel()
		}
	}

	return cp
}

// timeoutOn makes the command line time out.
func (cp *controlPlane) timeoutOn(args []string) *controlPlane {
	cp.errs[strings.Join(args, " ")] = executor.ErrTimeout

	return cp
}

func (cp *controlPlane) executor() *fake.Executor {
	return &fake.Executor{ExecuteMock: cp.execute}
}

func (cp *controlPlane) execute(args []string, timeout time.Duration, confirm bool) (string, error) {
	if cp.hook != nil {
		cp.hook(args)
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.calls = append(cp.calls, call{args: args, timeout: timeout, confirm: confirm})
	if err, ok := cp.errs[strings.Join(args, " ")]; ok {
		return "", err
	}

	switch args[0] {
	case acli.VerbList:
		if cp.listErr != nil {
			return "", cp.listErr
		}
		if cp.listOutput != nil {
			return *cp.listOutput, nil
		}
		return cp.renderList(), nil

	case acli.VerbGet:
		vg, err := cp.lookup(args)
		if err != nil {
			return "", err
		}
		if out, ok := cp.descriptions[args[1]]; ok {
			return out, nil
		}
		return renderDescription(args[1], vg), nil

	case acli.VerbDetachFromVM:
		vg, err := cp.lookup(args)
		if err != nil {
			return "", err
		}
		vg.vms = remove(vg.vms, args[2])
		return "", nil

	case acli.VerbDiskDelete:
		vg, err := cp.lookup(args)
		if err != nil {
			return "", err
		}
		index, _ := strconv.Atoi(args[2])
		disks := []int{}
		for _, d := range vg.disks {
			if d != index {
				disks = append(disks, d)
			}
		}
		vg.disks = disks
		return "", nil

	case acli.VerbDelete:
		if _, err := cp.lookup(args); err != nil {
			return "", err
		}
		delete(cp.vgs, args[1])
		cp.names = remove(cp.names, args[1])
		return "", nil
	}

	return "", fmt.Errorf("unexpected command %v", args)
}

func (cp *controlPlane) lookup(args []string) (*testVolumeGroup, error) {
	vg, ok := cp.vgs[args[1]]
	if !ok {
		return nil, &executor.CommandError{
			Command:  "acli " + strings.Join(args, " "),
			ExitCode: 1,
			Stderr:   "Unknown name: " + args[1],
			Err:      errors.New("exit status 1"),
		}
	}

	return vg, nil
}

func (cp *controlPlane) renderList() string {
	var b strings.Builder
	b.WriteString("Volume Group name    Volume Group UUID\n")
	for i, name := range cp.names {
		fmt.Fprintf(&b, "%s    00000000-0000-0000-0000-%012d\n", name, i)
	}

	return b.String()
}

func renderDescription(name string, vg *testVolumeGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s {\n", name)
	for _, vm := range vg.vms {
		fmt.Fprintf(&b, "  attachment_list {\n    vm_uuid: %q\n  }\n", vm)
	}
	for _, d := range vg.disks {
		fmt.Fprintf(&b, "  disk_list {\n    container_id: 8\n    index: %d\n    vmdisk_size: 10737418240\n  }\n", d)
	}
	fmt.Fprintf(&b, "  name: %q\n", name)
	if len(vg.vms) > 0 {
		b.WriteString("  volume_group_attachment_type: \"kDirect\"\n")
	} else {
		b.WriteString("  volume_group_attachment_type: \"kNone\"\n")
	}
	b.WriteString("}\n")

	return b.String()
}

// commands returns every received command line with the given verbs, all
// commands if none is given.
func (cp *controlPlane) commands(verbs ...string) []string {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	cmds := []string{}
	for _, c := range cp.calls {
		if len(verbs) > 0 && !contains(verbs, c.args[0]) {
			continue
		}
		cmds = append(cmds, strings.Join(c.args, " "))
	}

	return cmds
}

// mutations returns every received detach or delete command line.
func (cp *controlPlane) mutations() []string {
	return cp.commands(acli.VerbDetachFromVM, acli.VerbDiskDelete, acli.VerbDelete)
}

func (cp *controlPlane) exists(name string) bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	_, ok := cp.vgs[name]

	return ok
}

func remove(list []string, item string) []string {
	out := []string{}
	for _, s := range list {
		if s != item {
			out = append(out, s)
		}
	}

	return out
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}

	return false
}

func testOptions(prefix string) Options {
	return Options{
		Prefix:        prefix,
		Timeout:       30 * time.Second,
		ActionTimeout: 20 * time.Second,
	}
}

func testLogger() logr.Logger {
	return zap.New(zap.UseDevMode(true))
}
