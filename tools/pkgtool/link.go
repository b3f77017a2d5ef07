package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mogaika/upackage/linker"
	"github.com/mogaika/upackage/resource"
)

func NewLinkCommand(opts *options) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "link <files or dirs...>",
		Short: "Resolve imports between packages",
		Long: `Load every given package and resolve their imports against each other.
Directories contribute every *.upk file directly inside them. Prints the
target of every import. Unresolved imports fail the command unless
strict mode is off (config "strict" or --strict=false).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			registry := linker.NewRegistry()
			for _, path := range inputs {
				p, err := readPackage(path)
				if err != nil {
					return err
				}
				l, err := linker.NewLinker(path, p)
				if err != nil {
					return err
				}
				if err := registry.Add(l); err != nil {
					return err
				}
			}

			errs := registry.ResolveAll()

			out := cmd.OutOrStdout()
			title := color.New(color.FgCyan, color.Bold)
			ok := color.New(color.FgGreen)
			bad := color.New(color.FgRed)
			for _, l := range registry.Linkers() {
				title.Fprintf(out, "%v (%s)\n", l.Package.Name, l.Name)
				for i, res := range l.Imports {
					path, _ := l.Package.Path(resource.ImportIndex(i))
					if !res.Resolved() {
						bad.Fprintf(out, "  %4d %s: unresolved\n", i, path)
						continue
					}
					target := "package"
					if res.SourceIndex != resource.INDEX_NONE {
						target = fmt.Sprintf("export %d", res.SourceIndex)
					}
					ok.Fprintf(out, "  %4d %s -> %s %s\n", i, path, res.Source.Name, target)
				}
			}

			if !cmd.Flags().Changed("strict") {
				strict = opts.tool.Strict
			}
			if len(errs) != 0 && strict {
				return errors.Errorf("%d unresolved imports", len(errs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", true, "Fail on unresolved imports")
	return cmd
}

const PACKAGE_EXT = ".upk"

func expandInputs(args []string) ([]string, error) {
	var result []string
	for _, arg := range args {
		s, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !s.IsDir() {
			result = append(result, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list %s", arg)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), PACKAGE_EXT) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		result = append(result, found...)
	}
	return result, nil
}
