package resource

import "fmt"

const INDEX_NONE = -1

// PackageIndex addresses the combined import/export tables: negative values
// are imports, positive are exports, zero is null.
type PackageIndex int32

func ImportIndex(i int) PackageIndex { return PackageIndex(-i - 1) }
func ExportIndex(i int) PackageIndex { return PackageIndex(i + 1) }

func (p PackageIndex) IsNull() bool   { return p == 0 }
func (p PackageIndex) IsImport() bool { return p < 0 }
func (p PackageIndex) IsExport() bool { return p > 0 }

func (p PackageIndex) ToImport() int {
	if !p.IsImport() {
		panic(fmt.Sprintf("package index %d is not an import", p))
	}
	return int(-p - 1)
}

func (p PackageIndex) ToExport() int {
	if !p.IsExport() {
		panic(fmt.Sprintf("package index %d is not an export", p))
	}
	return int(p - 1)
}

func (p PackageIndex) String() string {
	switch {
	case p.IsImport():
		return fmt.Sprintf("import(%d)", p.ToImport())
	case p.IsExport():
		return fmt.Sprintf("export(%d)", p.ToExport())
	default:
		return "null"
	}
}
