// Package version reports the esglens build version.
package version

import "runtime/debug"

const shortCommitLen = 12

// Set at build time with -ldflags "-X github.com/esglens/esglens/pkg/version.version=v1.2.3".
var (
	version   = "dev"
	gitCommit = ""
)

// GetVersion returns the build version, falling back to the module version
// recorded by the Go toolchain.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// GetGitCommit returns the commit the binary was built from, if known.
func GetGitCommit() string {
	return gitCommit
}

// Describe returns the version followed by the short commit, when known, as
// printed by --version.
func Describe() string {
	v := GetVersion()
	commit := GetGitCommit()
	if commit == "" {
		return v
	}
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return v + " (" + commit + ")"
}
