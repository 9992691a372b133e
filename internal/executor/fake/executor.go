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

package fake

import (
	"context"
	"time"
)

// Executor to fake control-plane commands.
type Executor struct {
	// ExecuteMock mocks the Execute call.
	ExecuteMock func(args []string, timeout time.Duration, confirm bool) (string, error)
}

// Execute calls ExecuteMock mock function.
func (e *Executor) Execute(_ context.Context, args []string, timeout time.Duration, confirm bool) (string, error) {
	return e.ExecuteMock(args, timeout, confirm)
}
