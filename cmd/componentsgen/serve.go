package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/componentsgen/internal/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := mcp.NewServer(*a.config, a.logger)
			if err != nil {
				return err
			}
			a.logger.Info("MCP server ready, listening on stdio")
			return server.Serve(cmd.Context())
		},
	}
}
