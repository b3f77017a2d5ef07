package pack

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/names"
	"github.com/mogaika/upackage/resource"
)

// Description is the editable text form of a package. References between
// records are written as "import(N)" / "export(N)", empty for null.
type Description struct {
	Name         string              `yaml:"name"`
	Version      int32               `yaml:"version"`
	PackageFlags uint32              `yaml:"package_flags,omitempty"`
	Guid         string              `yaml:"guid,omitempty"`
	Imports      []ImportDescription `yaml:"imports,omitempty"`
	Exports      []ExportDescription `yaml:"exports,omitempty"`
}

type ImportDescription struct {
	Name         string `yaml:"name"`
	ClassPackage string `yaml:"class_package"`
	Class        string `yaml:"class"`
	Outer        string `yaml:"outer,omitempty"`
	// Informational, ignored when building
	Path string `yaml:"path,omitempty"`
}

type ExportDescription struct {
	Name             string   `yaml:"name"`
	Class            string   `yaml:"class,omitempty"`
	Super            string   `yaml:"super,omitempty"`
	Outer            string   `yaml:"outer,omitempty"`
	Flags            []string `yaml:"flags,omitempty"`
	Asset            bool     `yaml:"asset,omitempty"`
	ForcedExport     bool     `yaml:"forced_export,omitempty"`
	NotForClient     bool     `yaml:"not_for_client,omitempty"`
	NotForServer     bool     `yaml:"not_for_server,omitempty"`
	NotForEditorGame bool     `yaml:"not_for_editor_game,omitempty"`
	SerialOffset     int64    `yaml:"serial_offset,omitempty"`
	SerialSize       int64    `yaml:"serial_size,omitempty"`
	// Hex encoded
	Payload string `yaml:"payload,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

func formatIndex(idx resource.PackageIndex) string {
	if idx.IsNull() {
		return ""
	}
	return idx.String()
}

func ParseIndex(s string) (resource.PackageIndex, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return 0, nil
	}
	for _, kind := range []struct {
		prefix string
		make   func(int) resource.PackageIndex
	}{
		{"import(", resource.ImportIndex},
		{"export(", resource.ExportIndex},
	} {
		if strings.HasPrefix(s, kind.prefix) && strings.HasSuffix(s, ")") {
			i, err := strconv.Atoi(s[len(kind.prefix) : len(s)-1])
			if err != nil || i < 0 {
				return 0, errors.Errorf("bad package index %q", s)
			}
			return kind.make(i), nil
		}
	}
	return 0, errors.Errorf("bad package index %q", s)
}

func (p *Package) Describe() (*Description, error) {
	d := &Description{
		Name:         p.Name.String(),
		Version:      int32(p.Version),
		PackageFlags: p.PackageFlags,
	}
	if p.Guid != uuid.Nil {
		d.Guid = p.Guid.String()
	}

	for i, imp := range p.Imports {
		path, err := p.Path(resource.ImportIndex(i))
		if err != nil {
			return nil, errors.Wrapf(err, "import %d", i)
		}
		d.Imports = append(d.Imports, ImportDescription{
			Name:         imp.ObjectName.String(),
			ClassPackage: imp.ClassPackage.String(),
			Class:        imp.ClassName.String(),
			Outer:        formatIndex(imp.OuterIndex),
			Path:         path,
		})
	}

	for i, e := range p.Exports {
		path, err := p.Path(resource.ExportIndex(i))
		if err != nil {
			return nil, errors.Wrapf(err, "export %d", i)
		}
		payload, _ := p.Payload(i)
		d.Exports = append(d.Exports, ExportDescription{
			Name:             e.ObjectName.String(),
			Class:            formatIndex(e.ClassIndex),
			Super:            formatIndex(e.SuperIndex),
			Outer:            formatIndex(e.OuterIndex),
			Flags:            e.ObjectFlags.Names(),
			Asset:            e.IsAsset,
			ForcedExport:     e.ForcedExport,
			NotForClient:     e.NotForClient,
			NotForServer:     e.NotForServer,
			NotForEditorGame: e.NotForEditorGame,
			SerialOffset:     e.SerialOffset,
			SerialSize:       e.SerialSize,
			Payload:          hex.EncodeToString(payload),
			Path:             path,
		})
	}
	return d, nil
}

// Package rebuilds records from the description. Serial offsets are
// recomputed on write.
func (d *Description) Package() (*Package, error) {
	p := &Package{
		Name:         names.New(d.Name),
		Version:      config.PackageVersion(d.Version),
		PackageFlags: d.PackageFlags,
	}
	if p.Name.IsNone() {
		return nil, errors.New("package name is empty")
	}
	if !p.Version.Loadable() {
		return nil, errors.Wrapf(ErrUnknownVersion, "version %d", d.Version)
	}
	if d.Guid != "" {
		guid, err := uuid.Parse(d.Guid)
		if err != nil {
			return nil, errors.Wrap(err, "guid")
		}
		p.Guid = guid
	}

	for i, id := range d.Imports {
		imp := resource.NewImport()
		imp.ObjectName = names.New(id.Name)
		imp.ClassPackage = names.New(id.ClassPackage)
		imp.ClassName = names.New(id.Class)
		var err error
		if imp.OuterIndex, err = ParseIndex(id.Outer); err != nil {
			return nil, errors.Wrapf(err, "import %d outer", i)
		}
		p.Imports = append(p.Imports, imp)
	}

	for i, ed := range d.Exports {
		e := resource.NewExport()
		e.ObjectName = names.New(ed.Name)
		var err error
		if e.ClassIndex, err = ParseIndex(ed.Class); err != nil {
			return nil, errors.Wrapf(err, "export %d class", i)
		}
		if e.SuperIndex, err = ParseIndex(ed.Super); err != nil {
			return nil, errors.Wrapf(err, "export %d super", i)
		}
		if e.OuterIndex, err = ParseIndex(ed.Outer); err != nil {
			return nil, errors.Wrapf(err, "export %d outer", i)
		}
		flags, err := resource.ParseFlagNames(ed.Flags)
		if err != nil {
			return nil, errors.Wrapf(err, "export %d flags", i)
		}
		e.ObjectFlags = flags.Persisted()
		e.IsAsset = ed.Asset
		e.ForcedExport = ed.ForcedExport
		e.NotForClient = ed.NotForClient
		e.NotForServer = ed.NotForServer
		e.NotForEditorGame = ed.NotForEditorGame
		e.PackageFlags = p.PackageFlags
		e.PackageGuid = p.Guid

		payload, err := hex.DecodeString(ed.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "export %d payload", i)
		}
		if len(payload) == 0 {
			payload = nil
		}
		p.Exports = append(p.Exports, e)
		p.Payloads = append(p.Payloads, payload)
	}

	if err := p.checkIndices(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Package) checkIndices() error {
	check := func(owner string, idx resource.PackageIndex) error {
		_, err := p.ObjectName(idx)
		return errors.Wrap(err, owner)
	}
	for i, imp := range p.Imports {
		if err := check(fmt.Sprintf("import %d outer", i), imp.OuterIndex); err != nil {
			return err
		}
	}
	for i, e := range p.Exports {
		if err := check(fmt.Sprintf("export %d class", i), e.ClassIndex); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("export %d super", i), e.SuperIndex); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("export %d outer", i), e.OuterIndex); err != nil {
			return err
		}
	}
	return nil
}

func (d *Description) Encode() ([]byte, error) {
	return yaml.Marshal(d)
}

func ParseDescription(b []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, errors.Wrap(err, "parse package description")
	}
	return &d, nil
}
