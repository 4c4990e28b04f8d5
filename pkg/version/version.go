// Package version reports build information of the cse binaries.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/rzbill/cse/pkg/types"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"

	// BuildTime is set at build time via ldflags.
	BuildTime = "unknown"

	// Commit is the git commit SHA, set at build time via ldflags.
	Commit = "unknown"
)

func shortCommit() string {
	if len(Commit) > 8 {
		return Commit[:8]
	}
	return Commit
}

// schemaGenerations lists the entity generations this build can read.
func schemaGenerations() string {
	gens := types.Generations()
	out := make([]string, 0, len(gens))
	for _, g := range gens {
		out = append(out, g.String())
	}
	return strings.Join(out, ",")
}

// Info returns a one-line version summary.
func Info() string {
	return fmt.Sprintf("cse %s (%s) - %s %s/%s schemas=%s",
		Version,
		shortCommit(),
		BuildTime,
		runtime.GOOS,
		runtime.GOARCH,
		schemaGenerations(),
	)
}

// Map returns version information as a map.
func Map() map[string]string {
	return map[string]string{
		"version":           Version,
		"commit":            Commit,
		"buildTime":         BuildTime,
		"goVersion":         runtime.Version(),
		"os":                runtime.GOOS,
		"arch":              runtime.GOARCH,
		"schemaGenerations": schemaGenerations(),
	}
}
