package config

import "sync/atomic"

type PackageVersion int32

const (
	VER_UE4_OLDEST_LOADABLE_PACKAGE PackageVersion = 214

	// Exports carry NotForEditorGame starting from this version.
	VER_UE4_LOAD_FOR_EDITOR_GAME PackageVersion = 365

	VER_UE4_LATEST PackageVersion = 385
)

var packageVersion atomic.Int32

func init() {
	packageVersion.Store(int32(VER_UE4_LATEST))
}

func (v PackageVersion) Loadable() bool {
	return v >= VER_UE4_OLDEST_LOADABLE_PACKAGE && v <= VER_UE4_LATEST
}

// Version new packages are written with
func GetPackageVersion() PackageVersion {
	return PackageVersion(packageVersion.Load())
}

func SetPackageVersion(v PackageVersion) {
	packageVersion.Store(int32(v))
}
