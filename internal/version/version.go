package version

import "runtime/debug"

const (
	AppName        = "Trollbot"
	AppDescription = "Prefix command bot with a karma leaderboard"
)

// Version and BuildDate are set at link time:
//
//	go build -ldflags "-X github.com/keshon/trollbot/internal/version.Version=v1.2.0"
var (
	Version   = "dev"
	BuildDate = ""
)

// GoVersion returns the toolchain the binary was built with.
func GoVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}
