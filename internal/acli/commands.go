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

// Package acli describes the volume group commands of the Acropolis CLI and
// extracts the fields the teardown needs from their output.
package acli

import "strconv"

const (
	VerbList         = "vg.list"
	VerbGet          = "vg.get"
	VerbDetachFromVM = "vg.detach_from_vm"
	VerbDiskDelete   = "vg.disk_delete"
	VerbDelete       = "vg.delete"
)

// ListCommand lists all volume groups.
func ListCommand() []string {
	return []string{VerbList}
}

// GetCommand describes the volume group vg.
func GetCommand(vg string) []string {
	return []string{VerbGet, vg}
}

// DetachFromVMCommand detaches the VM vm from the volume group vg.
func DetachFromVMCommand(vg, vm string) []string {
	return []string{VerbDetachFromVM, vg, vm}
}

// DiskDeleteCommand deletes the disk at index from the volume group vg.
func DiskDeleteCommand(vg string, index int) []string {
	return []string{VerbDiskDelete, vg, strconv.Itoa(index)}
}

// DeleteCommand deletes the volume group vg.
func DeleteCommand(vg string) []string {
	return []string{VerbDelete, vg}
}
