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

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/csi-addons/vg-cleanup/internal/executor"
)

var _ = Describe("Teardown run", func() {
	var (
		cp   *controlPlane
		opts Options
	)

	runWith := func(opts Options) Summary {
		o, err := New(opts, cp.executor(), zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true)))
		Expect(err).NotTo(HaveOccurred())

		return o.Run(context.Background())
	}

	BeforeEach(func() {
		cp = newControlPlane()
		opts = testOptions("TEST-")
	})

	Context("when no VM is attached", func() {
		It("deletes every matching volume group with its disks", func() {
			cp.add("TEST-vg1", nil, 0, 1).add("TEST-vg2", nil, 0, 1).add("KEEP-vg3", nil, 0)

			s := runWith(opts)

			Expect(s.Matched).To(Equal(2))
			Expect(s.Succeeded).To(Equal(2))
			Expect(s.Failed).To(BeZero())
			Expect(cp.mutations()).To(Equal([]string{
				"vg.disk_delete TEST-vg1 0",
				"vg.disk_delete TEST-vg1 1",
				"vg.delete TEST-vg1",
				"vg.disk_delete TEST-vg2 0",
				"vg.disk_delete TEST-vg2 1",
				"vg.delete TEST-vg2",
			}))
			Expect(cp.exists("KEEP-vg3")).To(BeTrue())
		})
	})

	Context("when a VM is attached", func() {
		BeforeEach(func() {
			cp.add("TEST-vg1", []string{"vm-123"}, 0)
		})

		It("skips the volume group without force", func() {
			s := runWith(opts)

			Expect(s.Results).To(ConsistOf(Result{VolumeGroup: "TEST-vg1", Outcome: SkippedConsumersAttached}))
			Expect(s.Succeeded).To(BeZero())
			Expect(s.Failed).To(Equal(1))
			Expect(cp.mutations()).To(BeEmpty())
		})

		It("detaches the VM with force and tolerates a disk timeout", func() {
			cp.timeoutOn([]string{"vg.disk_delete", "TEST-vg1", "0"})
			opts.Force = true

			s := runWith(opts)

			Expect(s.Results).To(ConsistOf(Result{VolumeGroup: "TEST-vg1", Outcome: Succeeded}))
			Expect(cp.mutations()).To(Equal([]string{
				"vg.detach_from_vm TEST-vg1 vm-123",
				"vg.disk_delete TEST-vg1 0",
				"vg.delete TEST-vg1",
			}))
		})

		It("is rerun safely after the teardown", func() {
			opts.Force = true
			Expect(runWith(opts).Succeeded).To(Equal(1))

			s := runWith(opts)
			Expect(s.Matched).To(BeZero())
			Expect(s.Results).To(BeEmpty())
		})
	})

	Context("in dry run mode", func() {
		BeforeEach(func() {
			opts.DryRun = true
		})

		It("simulates the teardown when the control plane is unavailable", func() {
			unavailable := &executor.CommandError{ExitCode: -1, Err: errors.New("connection refused")}
			cp.listErr = unavailable
			cp.errs["vg.get EXAMPLE_VG1"] = unavailable
			cp.errs["vg.get EXAMPLE_VG2"] = unavailable
			opts.Prefix = "EXAMPLE_"

			s := runWith(opts)

			Expect(s.DryRun).To(BeTrue())
			Expect(s.Listed).To(Equal(4))
			Expect(s.Matched).To(Equal(2))
			Expect(s.Succeeded).To(Equal(2))
			Expect(s.Failed).To(BeZero())
			Expect(cp.mutations()).To(BeEmpty())
		})

		It("reads the real state and never mutates it", func() {
			cp.add("TEST-vg1", []string{"vm-123"}, 0, 1).add("TEST-vg2", nil, 0)
			opts.Force = true

			s := runWith(opts)

			Expect(s.Succeeded).To(Equal(2))
			Expect(cp.mutations()).To(BeEmpty())
			Expect(cp.commands()).To(Equal([]string{
				"vg.list",
				"vg.get TEST-vg1",
				"vg.get TEST-vg1",
				"vg.get TEST-vg2",
				"vg.get TEST-vg2",
			}))
			Expect(cp.exists("TEST-vg1")).To(BeTrue())
		})

		It("still skips attached volume groups without force", func() {
			cp.add("TEST-vg1", []string{"vm-123"})

			s := runWith(opts)

			Expect(s.Results).To(ConsistOf(Result{VolumeGroup: "TEST-vg1", Outcome: SkippedConsumersAttached}))
		})

		It("uses simulated data even when describe failures are skipped", func() {
			cp.add("TEST-vg1", nil)
			cp.errs["vg.get TEST-vg1"] = errors.New("connection refused")
			opts.DescribeFailurePolicy = "skip"

			s := runWith(opts)

			Expect(s.Results).To(ConsistOf(Result{VolumeGroup: "TEST-vg1", Outcome: Succeeded}))
		})
	})
})
