// Package version holds the chromapoem build identity set through ldflags:
//
//	-ldflags "-X github.com/gensys/chromapoem/internal/version.Version=x.y.z"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "unknown"
	// Date is RFC3339.
	Date = "unknown"
)

// String describes the build for `chromapoem version` and --version.
func String() string {
	platform := runtime.GOOS + "/" + runtime.GOARCH
	if Commit == "unknown" || Date == "unknown" {
		return fmt.Sprintf("chromapoem %s (%s, %s)", Version, runtime.Version(), platform)
	}
	commit := Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("chromapoem %s (commit: %s, built: %s, %s, %s)",
		Version, commit, Date, runtime.Version(), platform)
}

// UserAgent is sent on outbound HTTP requests.
func UserAgent() string {
	return "chromapoem/" + Version
}

// Short returns just the version number.
func Short() string {
	return Version
}
