package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mogaika/upackage/config"
)

type options struct {
	configPath string
	version    int32
	encoding   string
	logLevel   string

	tool *config.Tool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pkgtool",
		Short: "Inspect, build and link package files",
		Long: `pkgtool works on package files: name table, import and export tables
and export payloads.

  pkgtool dump Rocks.upk             # print the tables as yaml
  pkgtool build rocks.yaml Rocks.upk # build a package from a description
  pkgtool link *.upk                 # resolve imports between packages`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default ./pkgtool.yaml)")
	flags.Int32Var(&opts.version, "version", int32(config.VER_UE4_LATEST), "Package version for new packages")
	flags.StringVar(&opts.encoding, "encoding", "Windows 1252", "Charmap of single byte strings ("+strings.Join(config.ListEncodings(), ", ")+")")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level")

	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewLinkCommand(opts))
	return cmd
}

// setup merges the config file with flags given on the command line, flags
// win
func (opts *options) setup(cmd *cobra.Command) error {
	tool, err := config.LoadTool(opts.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("version") {
		tool.Version = opts.version
		if !config.PackageVersion(tool.Version).Loadable() {
			return errors.Errorf("unsupported package version %d", tool.Version)
		}
	}
	if flags.Changed("encoding") {
		tool.Encoding = opts.encoding
	}
	if flags.Changed("log-level") {
		tool.LogLevel = opts.logLevel
	}

	level, err := logrus.ParseLevel(tool.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	logrus.SetLevel(level)
	logrus.SetOutput(cmd.ErrOrStderr())

	if err := tool.Apply(); err != nil {
		return err
	}
	opts.tool = tool
	logrus.WithFields(logrus.Fields{
		"version":  tool.Version,
		"encoding": tool.Encoding,
	}).Debug("pkgtool configured")
	return nil
}
