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
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Result is the outcome of a single volume group.
type Result struct {
	VolumeGroup string
	Outcome     Outcome
}

// Summary is the aggregate result of a run.
type Summary struct {
	Prefix    string
	DryRun    bool
	Listed    int
	Matched   int
	Succeeded int
	Failed    int
	// Outcomes holds the number of volume groups per outcome.
	Outcomes map[Outcome]int
	// Results is ordered as the volume groups were processed.
	Results []Result
}

// HasFailures returns true if at least one volume group did not succeed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Recorder collects one outcome per volume group.
type Recorder struct {
	mu       sync.Mutex
	summary  Summary
	recorded map[string]struct{}
}

// NewRecorder returns a Recorder for a run over the given prefix.
func NewRecorder(prefix string, dryRun bool) *Recorder {
	return &Recorder{
		summary: Summary{
			Prefix:   prefix,
			DryRun:   dryRun,
			Outcomes: map[Outcome]int{},
		},
		recorded: map[string]struct{}{},
	}
}

// SetCandidates records how many volume groups were listed and how many
// matched the prefix.
func (r *Recorder) SetCandidates(listed, matched int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Listed = listed
	r.summary.Matched = matched
}

// Record stores the outcome of a volume group. Recording a second outcome
// for the same volume group is an error.
func (r *Recorder) Record(name string, outcome Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recorded[name]; ok {
		return fmt.Errorf("outcome of volume group %q already recorded", name)
	}
	r.recorded[name] = struct{}{}

	r.summary.Results = append(r.summary.Results, Result{VolumeGroup: name, Outcome: outcome})
	r.summary.Outcomes[outcome]++
	if outcome.IsSuccess() {
		r.summary.Succeeded++
	} else {
		r.summary.Failed++
	}

	return nil
}

// Summary returns a copy of the collected summary.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.summary
	s.Outcomes = make(map[Outcome]int, len(r.summary.Outcomes))
	for k, v := range r.summary.Outcomes {
		s.Outcomes[k] = v
	}
	s.Results = append([]Result(nil), r.summary.Results...)

	return s
}

// LogSummary writes the summary block of a run.
func LogSummary(log logr.Logger, s Summary) {
	log.Info(SummarySeparator)
	log.Info(SummaryHeader)
	log.Info(fmt.Sprintf(SummaryMatched, s.Matched))
	log.Info(fmt.Sprintf(SummarySucceeded, s.Succeeded))
	log.Info(fmt.Sprintf(SummaryFailed, s.Failed))
	for _, o := range Outcomes() {
		if o.IsSuccess() || s.Outcomes[o] == 0 {
			continue
		}
		log.V(1).Info(fmt.Sprintf(SummaryOutcome, o, s.Outcomes[o]))
	}
	log.Info(SummarySeparator)

	if s.DryRun {
		log.Info(DryRunFinished)
	}
}
