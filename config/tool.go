package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Tool struct {
	Version  int32  `mapstructure:"version"`
	Encoding string `mapstructure:"encoding"`
	LogLevel string `mapstructure:"log_level"`
	// Fail link when any import stays unresolved
	Strict bool `mapstructure:"strict"`
}

// LoadTool reads pkgtool settings from path (optional), pkgtool.yaml in the
// working directory and UPKG_* environment variables, in increasing priority.
func LoadTool(path string) (*Tool, error) {
	v := viper.New()

	v.SetDefault("version", int32(VER_UE4_LATEST))
	v.SetDefault("encoding", "Windows 1252")
	v.SetDefault("log_level", "info")
	v.SetDefault("strict", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pkgtool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("UPKG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var t Tool
	if err := v.Unmarshal(&t); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if !PackageVersion(t.Version).Loadable() {
		return nil, errors.Errorf("unsupported package version %d", t.Version)
	}
	return &t, nil
}

// Apply pushes tool settings into package-level defaults
func (t *Tool) Apply() error {
	if err := SetEncoding(t.Encoding); err != nil {
		return err
	}
	SetPackageVersion(PackageVersion(t.Version))
	return nil
}
