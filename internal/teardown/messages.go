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

var (
	RunModeDryRun            = "Running in DRY RUN mode - no changes will be made"
	RunModeLive              = "Running in LIVE mode - changes will be applied"
	ForceModeEnabled         = "FORCE mode enabled - will attempt to delete volume groups even if VMs are attached"
	TargetPrefix             = "Targeting volume groups with prefix: %s"
	ListVGs                  = "Retrieving list of volume groups"
	FoundVGs                 = "Found %d volume groups"
	NoMatchingVGs            = "No volume groups found matching the pattern '%s'"
	FoundMatchingVGs         = "Found %d volume groups matching the pattern '%s'"
	ProcessVG                = "Processing volume group: %s"
	AttachmentTypeReported   = "Volume group %s has attachment type: %s"
	FoundAttachedVMs         = "Found VMs attached to %s: %s"
	NoVMsToDetach            = "No VMs to detach from %s"
	VMsAttachedSkipping      = "VMs are attached to %s: %s. Skipping (use --force to override)"
	VMsAttachedForcing       = "VMs are attached to %s: %s. Continuing with detachment due to --force flag"
	DetachedVM               = "Detached VM %s from %s"
	FoundDisks               = "Found %d disks attached to %s"
	NoDisksToDetach          = "No disks to detach from %s"
	DetachedDisk             = "Detached disk index %d from %s"
	DeletedVG                = "Deleted volume group: %s"
	DryRunWouldExecute       = "[DRY RUN] Would execute: %s"
	DryRunUsingSimulatedVGs  = "[DRY RUN] Using simulated volume group list for demonstration"
	DryRunSimulatedDescribe  = "[DRY RUN] Could not describe %s, using simulated attachment data"
	DescribeFailedProceeding = "Could not describe %s, proceeding as if nothing is attached"
	ActionTimedOut           = "Command to %s timed out. The operation may still be in progress"
	RunInterrupted           = "Run interrupted, %d volume groups were not processed"
	DescribeInterrupted      = "Describing %s was interrupted"
	DryRunFinished           = "This was a dry run. No actual changes were made."
	SummarySeparator         = "=================================================="
	SummaryHeader            = "Operation Summary:"
	SummaryMatched           = "Total VGs matching pattern: %d"
	SummarySucceeded         = "Successfully processed: %d"
	SummaryFailed            = "Failed: %d"
	SummaryOutcome           = "%s: %d"
	CommandTimeout           = "Command timeout set to %s, action timeout set to %s"
)

var (
	FailedToListVGs       = "Failed to retrieve volume groups"
	FailedToDescribeVG    = "Failed to describe volume group %s, skipping"
	FailedToPerform       = "Failed to %s"
	FailedToDetachVMs     = "Failed to detach VMs from %s. Skipping volume group deletion."
	FailedToDetachDisks   = "Skipping deletion of %s due to disk detachment failure"
	FailedToDeleteVG      = "Failed to delete volume group: %s"
	FailedToRecordOutcome = "Failed to record outcome of volume group %s"
	InvalidDiskIndex      = "Disk index %s of %s is out of range and can not be deleted"
)
