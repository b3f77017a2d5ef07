package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mogaika/upackage/pack"
	"github.com/mogaika/upackage/utils"
)

func NewDumpCommand(opts *options) *cobra.Command {
	var useSpew bool
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print package tables",
		Long: `Print the import and export tables of a package as yaml. The output
can be edited and fed back to "pkgtool build".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPackage(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if useSpew {
				fmt.Fprint(out, utils.SDump(p.Imports, p.Exports))
				for i := range p.Exports {
					payload, _ := p.Payload(i)
					fmt.Fprintf(out, "payload %d: %s\n", i, utils.DumpToOneLineString(payload))
				}
				return nil
			}

			d, err := p.Describe()
			if err != nil {
				return err
			}
			b, err := d.Encode()
			if err != nil {
				return err
			}
			_, err = out.Write(b)
			return err
		},
	}
	cmd.Flags().BoolVar(&useSpew, "spew", false, "Dump raw records with go-spew")
	return cmd
}

func readPackage(path string) (*pack.Package, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := pack.Read(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return p, nil
}
