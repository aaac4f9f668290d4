package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/isati-sh/daycare-sub001/internal/config"
	"github.com/isati-sh/daycare-sub001/internal/database"
	"github.com/isati-sh/daycare-sub001/internal/logger"
	"github.com/isati-sh/daycare-sub001/internal/repository"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Skip the confirmation prompt for -clear")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Format != "json"})

	if strings.EqualFold(cfg.Database.Type, "memory") {
		log.Fatal().Msg("The backup tool needs a persistent database; DATABASE_TYPE=memory has nothing to back up")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	ctx := context.Background()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(ctx, cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		backupService := service.NewBackupService(repository.NewStore(db), cfg.Database.Type, time.Now, log)
		if err := handleExport(ctx, backupService, *exportOutput); err != nil {
			log.Fatal().Err(err).Msg("Export failed")
		}

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := handleImport(ctx, db, cfg.Database.Type, *importInput, *importClear, *importYes); err != nil {
			log.Fatal().Err(err).Msg("Import failed")
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) error {
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	logger.Info().Str("path", outputPath).Msg("Exporting database")
	if _, err := backupService.Export(ctx, file); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to flush backup file: %w", err)
	}

	if info, err := file.Stat(); err == nil {
		logger.Info().Float64("size_mb", float64(info.Size())/1024/1024).Msg("Export complete")
	}
	return nil
}

// handleImport restores a backup in one transaction, optionally clearing
// every table first.
func handleImport(ctx context.Context, db *database.DB, dbType, inputPath string, clearData, skipPrompt bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	if clearData && !skipPrompt {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			logger.Info().Msg("Import cancelled")
			return nil
		}
	}

	logger.Info().Str("path", inputPath).Msg("Importing database")
	return db.WithTx(ctx, func(tx *database.Tx) error {
		if clearData {
			if err := clearDatabase(ctx, tx); err != nil {
				return err
			}
		}
		backupService := service.NewBackupService(repository.NewStore(tx), dbType, time.Now, logger.Get())
		_, err := backupService.Import(ctx, file)
		return err
	})
}

func clearDatabase(ctx context.Context, tx *database.Tx) error {
	// Delete in reverse order of dependencies
	tables := []string{
		"daily_logs",
		"emergency_contacts",
		"children",
		"accounts",
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		logger.Info().Str("table", table).Msg("Cleared table")
	}
	return nil
}

func printUsage() {
	fmt.Println("Daycare Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export database to JSON file")
	fmt.Println("  backup import [options]    Import database from JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println("  -yes              Do not ask for confirmation with -clear")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./daycare.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  CONFIG_PATH      Optional YAML config file (default: config.yaml)")
}
