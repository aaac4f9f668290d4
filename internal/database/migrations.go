package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/isati-sh/daycare-sub001/internal/logger"
)

//go:embed migrations
var embeddedMigrations embed.FS

// RunMigrations executes all SQL migration files for the dialect. When
// migrationsPath is empty the files embedded in the binary are used,
// otherwise <migrationsPath>/<dialect>/*.sql.
func (db *DB) RunMigrations(ctx context.Context, migrationsPath string) error {
	if _, err := db.ExecContext(ctx, db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	fsys, err := db.migrationsFS(migrationsPath)
	if err != nil {
		return err
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, filename := range files {
		hasRun, err := db.hasMigrationRun(ctx, filename)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if err := db.executeMigration(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if err := db.recordMigration(ctx, filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}

		logger.Info().Str("migration", filename).Msg("migration completed")
	}

	return nil
}

func (db *DB) migrationsFS(migrationsPath string) (fs.FS, error) {
	subdir := db.Dialect.MigrationsSubdir()
	if migrationsPath != "" {
		return os.DirFS(filepath.Join(migrationsPath, subdir)), nil
	}
	sub, err := fs.Sub(embeddedMigrations, path.Join("migrations", subdir))
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return sub, nil
}

// hasMigrationRun checks if a migration has already been executed
func (db *DB) hasMigrationRun(ctx context.Context, filename string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// executeMigration runs the statements of a migration one at a time, since
// the MySQL and Postgres drivers reject multi-statement Exec with arguments.
func (db *DB) executeMigration(ctx context.Context, content string) error {
	for _, stmt := range SplitStatements(content) {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// recordMigration marks a migration as completed
func (db *DB) recordMigration(ctx context.Context, filename string) error {
	_, err := db.ExecContext(ctx, "INSERT INTO migrations (filename) VALUES (?)", filename)
	return err
}

// SplitStatements splits a migration on semicolons, dropping blank
// statements and full-line comments.
func SplitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
