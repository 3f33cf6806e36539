// Package version holds build metadata, set at link time:
//
//	go build -ldflags "-X github.com/MrSnakeDoc/shelf/internal/version.Version=v0.1.0 \
//	  -X github.com/MrSnakeDoc/shelf/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"             // ex: v0.1.0
	Commit    = "none"            // ex: abcd123
	BuildDate = "unknown"         // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version() // go version
)

// String renders the build info on one line.
func String() string {
	return fmt.Sprintf("shelf %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
