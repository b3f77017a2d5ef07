package main

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mogaika/upackage/config"
	"github.com/mogaika/upackage/pack"
)

func NewBuildCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build <desc.yaml> <out>",
		Short: "Build a package from a yaml description",
		Long: `Build a package file from a description in the "pkgtool dump" format.
Serial offsets and path fields of the description are ignored, a missing
version falls back to --version.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := pack.ParseDescription(src)
			if err != nil {
				return err
			}
			if d.Version == 0 {
				d.Version = int32(config.GetPackageVersion())
			}
			p, err := d.Package()
			if err != nil {
				return errors.Wrapf(err, "failed to build %s", args[0])
			}

			var buf bytes.Buffer
			if _, err := p.WriteTo(&buf); err != nil {
				return err
			}
			if err := os.WriteFile(args[1], buf.Bytes(), 0666); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"package": p.Name.String(),
				"imports": len(p.Imports),
				"exports": len(p.Exports),
				"size":    buf.Len(),
			}).Info("package written")
			return nil
		},
	}
}
