package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/componentsgen/internal/parse"
	"github.com/dshills/componentsgen/internal/resolution"
)

func newExportsCmd(a *app) *cobra.Command {
	var packageRoot string

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List the classes a package exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := filepath.Abs(packageRoot)
			if err != nil {
				return err
			}

			rc, err := resolution.NewFileSystemContext(a.logger, a.config.TextCacheSize)
			if err != nil {
				return err
			}
			analyzer := parse.NewAnalyzer(rc, parse.Options{
				Workers:  a.config.Workers,
				MaxDepth: a.config.MaxDepth,
				Logger:   a.logger,
			})

			exports, err := analyzer.GetPackageExports(cmd.Context(), filepath.ToSlash(root))
			if err != nil {
				return err
			}

			names := make([]string, 0, len(exports))
			for name := range exports {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range names {
				ref := exports[name]
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, ref.LocalName, ref.FileName)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&packageRoot, "package", "p", ".", "directory of the package")
	return cmd
}
