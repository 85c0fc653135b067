package main

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/componentsgen/internal/config"
	"github.com/dshills/componentsgen/internal/generate"
)

// app carries state shared by all commands once flags are parsed
type app struct {
	configFile string
	config     *config.Config
	logger     *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "componentsgen",
		Short: "Generate Components.js component files from TypeScript declarations",
		Long: `componentsgen reads the .d.ts declarations of a TypeScript package, resolves
the constructor parameters of its exported classes and writes them as
Components.js JSON-LD component files.

Examples:
  componentsgen generate -p ./my-package              All exported classes
  componentsgen generate -p ./ -c MyActor --print     One class to stdout
  componentsgen exports -p ./my-package               List exported classes
  componentsgen serve                                 Run as an MCP server on stdio`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.config = cfg
			a.logger = cfg.NewLogger()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.StringP(config.KeyLogLevel, "l", "info", "log level (debug, info, warn, error)")
	flags.Int(config.KeyWorkers, runtime.NumCPU(), "classes loaded concurrently")
	flags.Int(config.KeyMaxDepth, 0, "maximum nesting of expanded parameter types, 0 for no limit")
	flags.String(config.KeyCache, "", "SQLite generation cache file, empty disables caching")
	flags.Int(config.KeyTextCacheSize, 512, "declaration files kept in memory")

	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newExportsCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

func versionString() string {
	if version == "dev" {
		return fmt.Sprintf("dev (generator %s, built from source)", generate.Version)
	}
	return fmt.Sprintf("%s (generator %s, built: %s)", version, generate.Version, buildTime)
}
