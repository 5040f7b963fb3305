// Package buildinfo holds release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/aidanlsb/rnm/internal/buildinfo.Version=v0.4.0"
//
// Local builds leave them empty and fall back to debug.ReadBuildInfo.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
