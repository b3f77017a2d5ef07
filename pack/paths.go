package pack

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/resource"
)

// ObjectName of the record idx points at, None for null
func (p *Package) ObjectName(idx resource.PackageIndex) (names.Name, error) {
	switch {
	case idx.IsNull():
		return names.None, nil
	case idx.IsImport():
		if i := idx.ToImport(); i < len(p.Imports) {
			return p.Imports[i].ObjectName, nil
		}
	default:
		if i := idx.ToExport(); i < len(p.Exports) {
			return p.Exports[i].ObjectName, nil
		}
	}
	return names.None, errors.Errorf("%v out of range (%d imports, %d exports)", idx, len(p.Imports), len(p.Exports))
}

func (p *Package) outerOf(idx resource.PackageIndex) resource.PackageIndex {
	if idx.IsImport() {
		return p.Imports[idx.ToImport()].OuterIndex
	}
	return p.Exports[idx.ToExport()].OuterIndex
}

// Path renders idx as a dot separated outer chain. Export chains start with
// the package name, import chains start with the imported package.
func (p *Package) Path(idx resource.PackageIndex) (string, error) {
	if idx.IsNull() {
		return "", nil
	}
	var parts []string
	limit := len(p.Imports) + len(p.Exports)
	cur := idx
	for !cur.IsNull() {
		if len(parts) > limit {
			return "", errors.Errorf("outer cycle at %v", idx)
		}
		if cur.IsImport() != idx.IsImport() {
			return "", errors.Errorf("%v has outer %v of other table", idx, cur)
		}
		n, err := p.ObjectName(cur)
		if err != nil {
			return "", err
		}
		parts = append(parts, n.String())
		cur = p.outerOf(cur)
	}
	if idx.IsExport() {
		parts = append(parts, p.Name.String())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "."), nil
}
