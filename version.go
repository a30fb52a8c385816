package memio

import "fmt"

// Release of this module.
const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

// Version returns the release as "memio MAJOR.MINOR.PATCH".
func Version() string {
	return fmt.Sprintf("memio %d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
