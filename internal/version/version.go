// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version holds the build metadata duskd's binaries report on
// startup and in their user-agent-style identifiers, the same three-part
// numeric scheme the teacher's daemon uses.
package version

import "fmt"

const (
	major = 0
	minor = 1
	patch = 0
)

// appBuild is set via -ldflags by release tooling; it stays empty for
// local/dev builds.
var appBuild = ""

// String returns the full version string, e.g. "0.1.0" or "0.1.0-abcdef1"
// when appBuild has been stamped in.
func String() string {
	v := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if appBuild != "" {
		v += "-" + appBuild
	}
	return v
}
