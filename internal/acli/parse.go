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

package acli

import (
	"regexp"
	"strconv"
	"strings"
)

// AttachmentMode is the kind of attachment reported for a volume group.
type AttachmentMode int

const (
	// AttachmentNone means no VM is attached.
	AttachmentNone AttachmentMode = iota
	// AttachmentDirect means VMs are attached directly.
	AttachmentDirect
	// AttachmentOther covers every other reported attachment type.
	AttachmentOther
)

func (m AttachmentMode) String() string {
	switch m {
	case AttachmentNone:
		return "None"
	case AttachmentDirect:
		return "Direct"
	default:
		return "Other"
	}
}

const (
	attachmentTypeNone   = "kNone"
	attachmentTypeDirect = "kDirect"
)

var (
	attachmentTypeRegex = regexp.MustCompile(`volume_group_attachment_type: "([^"]+)"`)
	// attachment_list records are flat, so [^}] stays inside one record,
	// newlines included.
	attachedVMRegex = regexp.MustCompile(`attachment_list\s*\{[^}]*vm_uuid:\s*"([^"]+)"[^}]*\}`)
	// index fields are matched anywhere in the description, not only in
	// disk_list records.
	indexRegex = regexp.MustCompile(`index: (\d+)`)
)

// Description holds the fields extracted from the output of vg.get.
type Description struct {
	// Mode is AttachmentNone when no attachment type was reported.
	Mode AttachmentMode
	// RawMode is the attachment type as reported, empty if absent.
	RawMode string
	// Consumers holds the UUIDs of the attached VMs in order of appearance.
	Consumers []string
	// SubResources holds the disk indexes in order of appearance.
	SubResources []int
	// InvalidIndexes holds index values that do not fit an int. The disks
	// they refer to can not be addressed.
	InvalidIndexes []string
}

// ParseDescription extracts the attachment state and the disk indexes from
// the output of vg.get. Fields that can not be found are left empty.
func ParseDescription(output string) Description {
	d := Description{}

	if m := attachmentTypeRegex.FindStringSubmatch(output); m != nil {
		d.RawMode = m[1]
		switch d.RawMode {
		case attachmentTypeNone:
			d.Mode = AttachmentNone
		case attachmentTypeDirect:
			d.Mode = AttachmentDirect
		default:
			d.Mode = AttachmentOther
		}
	}

	if d.RawMode != attachmentTypeNone {
		for _, m := range attachedVMRegex.FindAllStringSubmatch(output, -1) {
			d.Consumers = append(d.Consumers, m[1])
		}
	}

	for _, m := range indexRegex.FindAllStringSubmatch(output, -1) {
		index, err := strconv.Atoi(m[1])
		if err != nil {
			d.InvalidIndexes = append(d.InvalidIndexes, m[1])
			continue
		}
		d.SubResources = append(d.SubResources, index)
	}

	return d
}

// HasConsumers returns true when VMs are attached to the volume group.
func (d Description) HasConsumers() bool {
	return len(d.Consumers) > 0
}

// ParseVolumeGroupList returns the volume group names from the output of
// vg.list. The name is the first column; blank lines, separator lines and
// the header are skipped.
func ParseVolumeGroupList(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "-") || isListHeader(trimmed) {
			continue
		}

		names = append(names, strings.Fields(trimmed)[0])
	}

	return names
}

func isListHeader(line string) bool {
	if strings.HasPrefix(line, "Volume Group") {
		return true
	}
	first := strings.Fields(line)[0]

	return strings.EqualFold(first, "Name")
}
