package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite has a single writer; one connection also keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Package operations

func (s *SQLiteStorage) createPackageWithQuerier(ctx context.Context, q querier, pkg *Package) error {
	query := `
		INSERT INTO packages (root_path, name, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query, pkg.RootPath, pkg.Name, pkg.Version, now, now)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	pkg.ID = id
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreatePackage(ctx context.Context, pkg *Package) error {
	return s.createPackageWithQuerier(ctx, s.querier(), pkg)
}

func (s *SQLiteStorage) getPackageWithQuerier(ctx context.Context, q querier, where string, arg interface{}) (*Package, error) {
	query := `
		SELECT id, root_path, name, version, last_generated_at, created_at, updated_at
		FROM packages
		WHERE ` + where
	var pkg Package
	var name, version sql.NullString
	var lastGeneratedAt sql.NullTime
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&pkg.ID, &pkg.RootPath, &name, &version,
		&lastGeneratedAt, &pkg.CreatedAt, &pkg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pkg.Name = name.String
	pkg.Version = version.String
	if lastGeneratedAt.Valid {
		pkg.LastGeneratedAt = lastGeneratedAt.Time
	}
	return &pkg, nil
}

func (s *SQLiteStorage) GetPackage(ctx context.Context, rootPath string) (*Package, error) {
	return s.getPackageWithQuerier(ctx, s.querier(), "root_path = ?", rootPath)
}

func (s *SQLiteStorage) updatePackageWithQuerier(ctx context.Context, q querier, pkg *Package) error {
	query := `
		UPDATE packages
		SET name = ?, version = ?, last_generated_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query, pkg.Name, pkg.Version, pkg.LastGeneratedAt, now, pkg.ID)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}
	pkg.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdatePackage(ctx context.Context, pkg *Package) error {
	return s.updatePackageWithQuerier(ctx, s.querier(), pkg)
}

// Generation operations

func (s *SQLiteStorage) upsertGenerationWithQuerier(ctx context.Context, q querier, gen *Generation) error {
	query := `
		INSERT INTO generations (package_id, selection, generator_version, component_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(package_id, selection) DO UPDATE SET
			generator_version = excluded.generator_version,
			component_count = excluded.component_count,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		gen.PackageID, gen.Selection, gen.GeneratorVersion, gen.ComponentCount, now, now).Scan(&gen.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert generation: %w", err)
	}
	gen.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertGeneration(ctx context.Context, gen *Generation) error {
	return s.upsertGenerationWithQuerier(ctx, s.querier(), gen)
}

const generationColumns = `id, package_id, selection, generator_version, component_count, created_at, updated_at`

func scanGeneration(scan func(dest ...interface{}) error) (*Generation, error) {
	var gen Generation
	err := scan(&gen.ID, &gen.PackageID, &gen.Selection, &gen.GeneratorVersion,
		&gen.ComponentCount, &gen.CreatedAt, &gen.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

func (s *SQLiteStorage) getGenerationWithQuerier(ctx context.Context, q querier, packageID int64, selection string) (*Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations WHERE package_id = ? AND selection = ?`
	gen, err := scanGeneration(q.QueryRowContext(ctx, query, packageID, selection).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return gen, err
}

func (s *SQLiteStorage) GetGeneration(ctx context.Context, packageID int64, selection string) (*Generation, error) {
	return s.getGenerationWithQuerier(ctx, s.querier(), packageID, selection)
}

func (s *SQLiteStorage) listGenerationsWithQuerier(ctx context.Context, q querier, packageID int64) ([]*Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations WHERE package_id = ? ORDER BY selection`
	rows, err := q.QueryContext(ctx, query, packageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var gens []*Generation
	for rows.Next() {
		gen, err := scanGeneration(rows.Scan)
		if err != nil {
			return nil, err
		}
		gens = append(gens, gen)
	}
	return gens, rows.Err()
}

func (s *SQLiteStorage) ListGenerations(ctx context.Context, packageID int64) ([]*Generation, error) {
	return s.listGenerationsWithQuerier(ctx, s.querier(), packageID)
}

func (s *SQLiteStorage) deleteGenerationWithQuerier(ctx context.Context, q querier, generationID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM generations WHERE id = ?", generationID)
	return err
}

func (s *SQLiteStorage) DeleteGeneration(ctx context.Context, generationID int64) error {
	return s.deleteGenerationWithQuerier(ctx, s.querier(), generationID)
}

// Source file operations

func (s *SQLiteStorage) replaceSourceFilesWithQuerier(ctx context.Context, q querier, generationID int64, files []*SourceFile) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM source_files WHERE generation_id = ?", generationID); err != nil {
		return fmt.Errorf("failed to clear source files: %w", err)
	}

	query := `INSERT INTO source_files (generation_id, file_path, content_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`
	now := time.Now()
	for _, file := range files {
		err := q.QueryRowContext(ctx, query, generationID, file.FilePath, file.ContentHash[:], now).Scan(&file.ID)
		if err != nil {
			return fmt.Errorf("failed to insert source file %s: %w", file.FilePath, err)
		}
		file.GenerationID = generationID
		file.CreatedAt = now
	}
	return nil
}

func (s *SQLiteStorage) ReplaceSourceFiles(ctx context.Context, generationID int64, files []*SourceFile) error {
	return s.replaceSourceFilesWithQuerier(ctx, s.querier(), generationID, files)
}

func (s *SQLiteStorage) listSourceFilesWithQuerier(ctx context.Context, q querier, generationID int64) ([]*SourceFile, error) {
	query := `
		SELECT id, generation_id, file_path, content_hash, created_at
		FROM source_files
		WHERE generation_id = ?
		ORDER BY file_path
	`
	rows, err := q.QueryContext(ctx, query, generationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var files []*SourceFile
	for rows.Next() {
		var file SourceFile
		var hash []byte
		if err := rows.Scan(&file.ID, &file.GenerationID, &file.FilePath, &hash, &file.CreatedAt); err != nil {
			return nil, err
		}
		copy(file.ContentHash[:], hash)
		files = append(files, &file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListSourceFiles(ctx context.Context, generationID int64) ([]*SourceFile, error) {
	return s.listSourceFilesWithQuerier(ctx, s.querier(), generationID)
}

// Document operations

func (s *SQLiteStorage) replaceDocumentsWithQuerier(ctx context.Context, q querier, generationID int64, docs []*Document) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM documents WHERE generation_id = ?", generationID); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	query := `INSERT INTO documents (generation_id, output_path, content, created_at) VALUES (?, ?, ?, ?) RETURNING id`
	now := time.Now()
	for _, doc := range docs {
		err := q.QueryRowContext(ctx, query, generationID, doc.OutputPath, doc.Content, now).Scan(&doc.ID)
		if err != nil {
			return fmt.Errorf("failed to insert document %s: %w", doc.OutputPath, err)
		}
		doc.GenerationID = generationID
		doc.CreatedAt = now
	}
	return nil
}

func (s *SQLiteStorage) ReplaceDocuments(ctx context.Context, generationID int64, docs []*Document) error {
	return s.replaceDocumentsWithQuerier(ctx, s.querier(), generationID, docs)
}

func (s *SQLiteStorage) listDocumentsWithQuerier(ctx context.Context, q querier, generationID int64) ([]*Document, error) {
	query := `
		SELECT id, generation_id, output_path, content, created_at
		FROM documents
		WHERE generation_id = ?
		ORDER BY output_path
	`
	rows, err := q.QueryContext(ctx, query, generationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []*Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.GenerationID, &doc.OutputPath, &doc.Content, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context, generationID int64) ([]*Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.querier(), generationID)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, packageID int64) (*PackageStatus, error) {
	pkg, err := s.getPackageWithQuerier(ctx, q, "id = ?", packageID)
	if err != nil {
		return nil, err
	}

	status := &PackageStatus{Package: pkg}

	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations WHERE package_id = ?", packageID).
		Scan(&status.GenerationsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM source_files sf
		JOIN generations g ON sf.generation_id = g.id
		WHERE g.package_id = ?
	`, packageID).Scan(&status.SourceFilesCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count source files: %w", err)
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents d
		JOIN generations g ON d.generation_id = g.id
		WHERE g.package_id = ?
	`, packageID).Scan(&status.DocumentsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.CacheSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, packageID int64) (*PackageStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), packageID)
}

// Transaction implementations route every operation through the transaction's querier

func (t *sqliteTx) CreatePackage(ctx context.Context, pkg *Package) error {
	return t.storage.createPackageWithQuerier(ctx, t.querier(), pkg)
}

func (t *sqliteTx) GetPackage(ctx context.Context, rootPath string) (*Package, error) {
	return t.storage.getPackageWithQuerier(ctx, t.querier(), "root_path = ?", rootPath)
}

func (t *sqliteTx) UpdatePackage(ctx context.Context, pkg *Package) error {
	return t.storage.updatePackageWithQuerier(ctx, t.querier(), pkg)
}

func (t *sqliteTx) UpsertGeneration(ctx context.Context, gen *Generation) error {
	return t.storage.upsertGenerationWithQuerier(ctx, t.querier(), gen)
}

func (t *sqliteTx) GetGeneration(ctx context.Context, packageID int64, selection string) (*Generation, error) {
	return t.storage.getGenerationWithQuerier(ctx, t.querier(), packageID, selection)
}

func (t *sqliteTx) ListGenerations(ctx context.Context, packageID int64) ([]*Generation, error) {
	return t.storage.listGenerationsWithQuerier(ctx, t.querier(), packageID)
}

func (t *sqliteTx) DeleteGeneration(ctx context.Context, generationID int64) error {
	return t.storage.deleteGenerationWithQuerier(ctx, t.querier(), generationID)
}

func (t *sqliteTx) ReplaceSourceFiles(ctx context.Context, generationID int64, files []*SourceFile) error {
	return t.storage.replaceSourceFilesWithQuerier(ctx, t.querier(), generationID, files)
}

func (t *sqliteTx) ListSourceFiles(ctx context.Context, generationID int64) ([]*SourceFile, error) {
	return t.storage.listSourceFilesWithQuerier(ctx, t.querier(), generationID)
}

func (t *sqliteTx) ReplaceDocuments(ctx context.Context, generationID int64, docs []*Document) error {
	return t.storage.replaceDocumentsWithQuerier(ctx, t.querier(), generationID, docs)
}

func (t *sqliteTx) ListDocuments(ctx context.Context, generationID int64) ([]*Document, error) {
	return t.storage.listDocumentsWithQuerier(ctx, t.querier(), generationID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, packageID int64) (*PackageStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), packageID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions not supported")
}
