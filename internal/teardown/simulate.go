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

import "github.com/csi-addons/vg-cleanup/internal/acli"

// stage identifies the point of the teardown that needs a description.
type stage int

const (
	consumerStage stage = iota
	subResourceStage
)

func (s stage) String() string {
	if s == consumerStage {
		return "consumer check"
	}

	return "disk detachment"
}

// simulatedVolumeGroups is the list used by a dry run when the control
// plane cannot be listed.
func simulatedVolumeGroups() []string {
	return []string{"EXAMPLE_VG1", "EXAMPLE_VG2", "OTHER_VG", "ANOTHER_VG"}
}

// simulatedDescription is used by a dry run when a volume group cannot be
// described. It reports no attached VMs and a single disk at index 0, so
// that the whole teardown path is shown.
func simulatedDescription(s stage) acli.Description {
	if s == consumerStage {
		return acli.Description{Mode: acli.AttachmentNone}
	}

	return acli.Description{Mode: acli.AttachmentNone, SubResources: []int{0}}
}
