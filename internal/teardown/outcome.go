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

// Outcome is the terminal state reached by a volume group in a run.
type Outcome int

const (
	// Succeeded means the volume group was deleted, or the deletion was
	// submitted and timed out.
	Succeeded Outcome = iota
	// SkippedConsumersAttached means VMs are attached and force was not set.
	SkippedConsumersAttached
	// FailedDetachConsumers means detaching one of the VMs failed.
	FailedDetachConsumers
	// FailedDetachSubResources means deleting at least one disk failed.
	FailedDetachSubResources
	// FailedDelete means deleting the volume group itself failed.
	FailedDelete
	// SkippedDescribeFailed means the volume group could not be described
	// and the describe failure policy is to skip.
	SkippedDescribeFailed
	// Interrupted means the run was cancelled before the volume group was
	// processed.
	Interrupted
)

var outcomeNames = map[Outcome]string{
	Succeeded:                "Succeeded",
	SkippedConsumersAttached: "SkippedConsumersAttached",
	FailedDetachConsumers:    "FailedDetachConsumers",
	FailedDetachSubResources: "FailedDetachSubResources",
	FailedDelete:             "FailedDelete",
	SkippedDescribeFailed:    "SkippedDescribeFailed",
	Interrupted:              "Interrupted",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}

	return "Unknown"
}

// IsSuccess returns true only for Succeeded, every other outcome counts as
// a failure.
func (o Outcome) IsSuccess() bool {
	return o == Succeeded
}

// Outcomes returns all outcomes in declaration order.
func Outcomes() []Outcome {
	return []Outcome{
		Succeeded,
		SkippedConsumersAttached,
		FailedDetachConsumers,
		FailedDetachSubResources,
		FailedDelete,
		SkippedDescribeFailed,
		Interrupted,
	}
}
