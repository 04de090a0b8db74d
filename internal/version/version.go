// Package version holds build metadata injected via ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X github.com/kailas-cloud/pagedex/internal/version.Version=v1.0.0 \
//	  -X github.com/kailas-cloud/pagedex/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = "unknown"
)
