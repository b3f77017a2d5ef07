package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/resource"
)

func TestDescribeRoundTrip(t *testing.T) {
	p := newFixture().build(t, config.VER_UE4_LATEST)
	b := write(t, p)

	d, err := p.Describe()
	require.NoError(t, err)
	assert.Equal(t, "/Game/Rocks", d.Name)
	assert.Equal(t, testGuid.String(), d.Guid)
	assert.Equal(t, "import(1)", d.Exports[0].Class)
	assert.Equal(t, []string{"Public", "Standalone"}, d.Exports[0].Flags)
	assert.Equal(t, "/Game/Rocks.Rock.Body", d.Exports[1].Path)
	assert.Equal(t, "010203", d.Exports[1].Payload)
	assert.Equal(t, "/Script/Engine.BodySetup", d.Imports[2].Path)

	enc, err := d.Encode()
	require.NoError(t, err)
	parsed, err := ParseDescription(enc)
	require.NoError(t, err)
	rebuilt, err := parsed.Package()
	require.NoError(t, err)
	assert.Equal(t, b, write(t, rebuilt))
}

func TestDescriptionErrors(t *testing.T) {
	for name, text := range map[string]string{
		"no name":     "version: 385\n",
		"old version": "name: /Game/X\nversion: 100\n",
		"bad guid":    "name: /Game/X\nversion: 385\nguid: nope\n",
		"bad outer":   "name: /Game/X\nversion: 385\nexports:\n  - name: A\n    outer: export(4)\n",
		"bad index":   "name: /Game/X\nversion: 385\nimports:\n  - name: A\n    class_package: P\n    class: C\n    outer: imp(0)\n",
		"bad flags":   "name: /Game/X\nversion: 385\nexports:\n  - name: A\n    flags: [Shiny]\n",
		"bad payload": "name: /Game/X\nversion: 385\nexports:\n  - name: A\n    payload: zz\n",
	} {
		t.Run(name, func(t *testing.T) {
			d, err := ParseDescription([]byte(text))
			require.NoError(t, err)
			_, err = d.Package()
			assert.Error(t, err)
		})
	}

	_, err := ParseDescription([]byte("name: [unterminated"))
	assert.Error(t, err)
}

func TestParseIndex(t *testing.T) {
	for in, want := range map[string]resource.PackageIndex{
		"":           0,
		"null":       0,
		"import(0)":  -1,
		"export(0)":  1,
		" export(5)": 6,
	} {
		got, err := ParseIndex(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"import(-1)", "export()", "thing(1)", "export(1"} {
		_, err := ParseIndex(in)
		assert.Error(t, err, in)
	}
}
