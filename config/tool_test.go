package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadToolDefaults(t *testing.T) {
	tool, err := LoadTool("")
	require.NoError(t, err)
	assert.Equal(t, int32(VER_UE4_LATEST), tool.Version)
	assert.Equal(t, "Windows 1252", tool.Encoding)
	assert.Equal(t, "info", tool.LogLevel)
	assert.True(t, tool.Strict)
}

func TestLoadToolFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 300\nencoding: ISO 8859-5\nstrict: false\n"), 0644))
	t.Setenv("UPKG_LOG_LEVEL", "debug")

	tool, err := LoadTool(path)
	require.NoError(t, err)
	assert.Equal(t, int32(300), tool.Version)
	assert.Equal(t, "ISO 8859-5", tool.Encoding)
	assert.Equal(t, "debug", tool.LogLevel)
	assert.False(t, tool.Strict)
}

func TestLoadToolRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 10\n"), 0644))

	_, err := LoadTool(path)
	assert.Error(t, err)
}

func TestLoadToolMissingExplicitFile(t *testing.T) {
	_, err := LoadTool(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSetEncoding(t *testing.T) {
	defer func() { require.NoError(t, SetEncoding("Windows 1252")) }()

	require.NoError(t, SetEncoding("ISO 8859-5"))
	assert.Equal(t, "ISO 8859-5", GetEncoding().String())
	assert.Error(t, SetEncoding("no such charmap"))
	assert.Contains(t, ListEncodings(), "Windows 1252")
}
