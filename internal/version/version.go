/*
Copyright 2023 The Kubernetes-CSI-Addons Authors.

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

package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

var (
	// GitCommit tell the latest git commit the binary is built from.
	GitCommit string
	// Version tells the release version.
	Version string
)

// Program is the name of the binary.
const Program = "vg-cleanup"

// Info returns the version details as key/value pairs for logging.
func Info() []interface{} {
	return []interface{}{
		"version", Version,
		"gitCommit", GitCommit,
		"goVersion", runtime.Version(),
		"platform", runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func PrintVersion() {
	Fprint(os.Stdout)
}

// Fprint writes the version details to w.
func Fprint(w io.Writer) {
	fmt.Fprintln(w, "Program:", Program)
	fmt.Fprintln(w, "Version:", Version)
	fmt.Fprintln(w, "Git Commit:", GitCommit)
	fmt.Fprintln(w, "Go Version:", runtime.Version())
	fmt.Fprintln(w, "Compiler:", runtime.Compiler)
	fmt.Fprintf(w, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
