package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/componentsgen/internal/generate"
	"github.com/dshills/componentsgen/internal/storage"
)

func newGenerateCmd(a *app) *cobra.Command {
	var req generate.Request

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate component files for a package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache(a.config.Cache)
			if err != nil {
				return err
			}
			if store != nil {
				defer func() { _ = store.Close() }()
			}

			g := generate.New(generate.Config{
				Workers:   a.config.Workers,
				MaxDepth:  a.config.MaxDepth,
				CacheSize: a.config.TextCacheSize,
				Storage:   store,
				Logger:    a.logger,
			})

			out, err := g.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if req.Print {
				for _, doc := range out.Documents {
					a.logger.Debug("document", "path", doc.Path)
					if _, err := cmd.OutOrStdout().Write(doc.Content); err != nil {
						return err
					}
				}
				return nil
			}
			for _, path := range out.Written {
				a.logger.Info("wrote", "path", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.PackageRoot, "package", "p", ".", "directory of the package")
	cmd.Flags().StringSliceVarP(&req.ClassNames, "class", "c", nil, "class to generate a component for (repeatable, default all exported classes)")
	cmd.Flags().StringVarP(&req.OutputPath, "output", "o", "", "directory to write the files under (default the package root)")
	cmd.Flags().BoolVar(&req.Print, "print", false, "print to standard output instead of writing files")
	return cmd
}

// openCache opens the generation cache, or returns nil when caching is disabled
func openCache(path string) (storage.Storage, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, nil
}
