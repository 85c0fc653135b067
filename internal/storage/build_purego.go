//go:build purego || !sqlite_cgo
// +build purego !sqlite_cgo

package storage

// Default build: a pure Go SQLite without a C toolchain.
//
//	CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
