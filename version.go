// Package agentauth provides version information for the agentauth module.
package agentauth

import (
	"fmt"
	"runtime"
)

// Version is the module version.
const Version = "0.1.0"

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion returns version information
func GetVersion() Info {
	return Info{
		Version:   Version,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("agentauth %s (%s %s)", i.Version, i.GoVersion, i.Platform)
}
