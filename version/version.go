// Package version holds build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/ChristianF88/radix256/version.Version=v1.2.0 -X github.com/ChristianF88/radix256/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

var (
	Version = "dev"
	Date    = ""
)
