package storage

import (
	"context"
	"time"
)

// Storage persists generated components together with the source file hashes
// they were generated from
type Storage interface {
	// Package operations
	CreatePackage(ctx context.Context, pkg *Package) error
	GetPackage(ctx context.Context, rootPath string) (*Package, error)
	UpdatePackage(ctx context.Context, pkg *Package) error

	// Generation operations
	UpsertGeneration(ctx context.Context, gen *Generation) error
	GetGeneration(ctx context.Context, packageID int64, selection string) (*Generation, error)
	ListGenerations(ctx context.Context, packageID int64) ([]*Generation, error)
	DeleteGeneration(ctx context.Context, generationID int64) error

	// Source file operations
	ReplaceSourceFiles(ctx context.Context, generationID int64, files []*SourceFile) error
	ListSourceFiles(ctx context.Context, generationID int64) ([]*SourceFile, error)

	// Document operations
	ReplaceDocuments(ctx context.Context, generationID int64, docs []*Document) error
	ListDocuments(ctx context.Context, generationID int64) ([]*Document, error)

	// Status operations
	GetStatus(ctx context.Context, packageID int64) (*PackageStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}

// Package is a package that components were generated for
type Package struct {
	ID              int64
	RootPath        string
	Name            string
	Version         string
	LastGeneratedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Generation is one cached generator run. Selection is the sorted,
// comma-joined list of requested classes, empty for all exported classes.
type Generation struct {
	ID               int64
	PackageID        int64
	Selection        string
	GeneratorVersion string
	ComponentCount   int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SourceFile is a file read during a generation
type SourceFile struct {
	ID           int64
	GenerationID int64
	FilePath     string
	ContentHash  [32]byte
	CreatedAt    time.Time
}

// Document is one generated output file
type Document struct {
	ID           int64
	GenerationID int64
	OutputPath   string
	Content      []byte
	CreatedAt    time.Time
}

// PackageStatus contains statistics about a cached package
type PackageStatus struct {
	Package          *Package
	GenerationsCount int
	SourceFilesCount int
	DocumentsCount   int
	CacheSizeMB      float64
}
