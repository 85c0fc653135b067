package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/componentsgen/internal/config"
	"github.com/dshills/componentsgen/internal/generate"
	"github.com/dshills/componentsgen/internal/parse"
	"github.com/dshills/componentsgen/internal/resolution"
	"github.com/dshills/componentsgen/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "componentsgen"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	storage   storage.Storage // nil when caching is disabled
	generator *generate.Generator
	config    config.Config
	logger    *log.Logger
}

// NewServer creates a new MCP server instance. A nil logger discards output.
func NewServer(cfg config.Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var store storage.Storage
	if cfg.Cache != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		sqlite, err := storage.NewSQLiteStorage(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = sqlite
	}

	gen := generate.New(generate.Config{
		Workers:   cfg.Workers,
		MaxDepth:  cfg.MaxDepth,
		CacheSize: cfg.TextCacheSize,
		Storage:   store,
		Logger:    logger,
	})

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, generate.Version),
		storage:   store,
		generator: gen,
		config:    cfg,
		logger:    logger,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until ctx is cancelled or
// stdin is closed
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	stdio := server.NewStdioServer(s.mcp)
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		s.logger.Info("server stopped")
		return nil
	}
	return err
}

// Close releases the generation cache
func (s *Server) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(listExportsTool(), s.handleListExports)
	s.mcp.AddTool(resolveConstructorTool(), s.handleResolveConstructor)
	s.mcp.AddTool(generateComponentsTool(), s.handleGenerateComponents)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// newAnalyzer creates an analyzer over a fresh file system view, so every
// request sees the current state of the package
func (s *Server) newAnalyzer() (*parse.Analyzer, error) {
	rc, err := resolution.NewFileSystemContext(s.logger, s.config.TextCacheSize)
	if err != nil {
		return nil, err
	}
	return parse.NewAnalyzer(rc, parse.Options{
		Workers:  s.config.Workers,
		MaxDepth: s.config.MaxDepth,
		Logger:   s.logger,
	}), nil
}
