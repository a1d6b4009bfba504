// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     version
// Description: Central version management for the binary and its components
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for the sexpr components
const (
	// Application version
	App = "0.1.0"

	// Component versions
	Engine    = "0.1.0"
	Converter = "0.1.0" // gRPC service
	Gateway   = "0.1.0" // websocket endpoint
	History   = "0.1.0" // schema of the history store
)

// Set at build time with -ldflags "-X github.com/msto63/sexpr/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "engine":
		return Engine
	case "converter":
		return Converter
	case "gateway":
		return Gateway
	case "history":
		return History
	default:
		return App
	}
}

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information
func Get() Info {
	return Info{
		Version:   App,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line description
func (i Info) String() string {
	return fmt.Sprintf("sexpr %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
