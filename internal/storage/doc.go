// Package storage provides the SQLite generation cache.
//
// A generation is one generator run for a package and a class selection. It
// records the hash of every source file read while resolving, and the
// documents that were produced. A later run for the same package and
// selection can reuse the documents as long as all recorded hashes still
// match the files on disk.
//
// # Database Schema
//
// Tables:
//   - packages: package root, name and version
//   - generations: one row per (package, selection)
//   - source_files: SHA-256 hashes of the files a generation read
//   - documents: generated JSON-LD files
//
// Deleting a generation deletes its source files and documents.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.componentsgen/cache.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Transactions
//
// A generation is written atomically:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.UpsertGeneration(ctx, gen); err != nil {
//	    return err
//	}
//	if err := tx.ReplaceSourceFiles(ctx, gen.ID, files); err != nil {
//	    return err
//	}
//	if err := tx.ReplaceDocuments(ctx, gen.ID, docs); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Build Modes
//
// The default build uses modernc.org/sqlite and needs no C toolchain. Building
// with -tags sqlite_cgo switches to github.com/mattn/go-sqlite3.
package storage
