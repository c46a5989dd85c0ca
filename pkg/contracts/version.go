// Package contracts holds the types shared between the reportcards packages.
package contracts

import (
	"fmt"
	"runtime"
)

// Version of the report card generator
const Version = "1.0.0"

// Stamped at build time:
//
//	go build -ldflags "-X reportcards/pkg/contracts.GitCommit=$(git rev-parse --short HEAD)"
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo collects build and runtime details
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersionString is what `reportcards -version` prints.
func GetFullVersionString() string {
	v := GetVersionInfo()
	return fmt.Sprintf("reportcards v%s (commit %s, built %s, %s %s)",
		v.Version, v.GitCommit, v.BuildTime, v.GoVersion, v.Platform)
}
