package version

import "fmt"

// Name is the program name reported to the API and in --version output.
const Name = "cirrus-run"

// Set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/cirrusrun/internal/version.Version=v1.0.0".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// UserAgent is sent with every API request.
func UserAgent() string {
	return Name + "/" + Version
}

// String is the --version line.
func String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", Name, Version, GitCommit, BuildTime)
}
