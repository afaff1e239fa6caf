// Command dbtransfer moves the Writify tables from one Postgres host to another.
//
//	dbtransfer export -out ./dump        reads SOURCE_DATABASE_URL
//	dbtransfer import -in ./dump [-truncate]  migrates and loads TARGET_DATABASE_URL
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/infrastructure/config"
	"github.com/writify/writify-backend/internal/infrastructure/logging"
	pgstore "github.com/writify/writify-backend/internal/infrastructure/persistence/postgres"
	"github.com/writify/writify-backend/internal/infrastructure/persistence/transfer"
)

const usage = `usage:
  dbtransfer export -out <dir>
  dbtransfer import -in <dir> [-truncate]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log := logging.NewSlogLogger(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "export":
		err = runExport(ctx, cfg.Transfer, log, os.Args[2:])
	case "import":
		err = runImport(ctx, cfg.Transfer, log, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("dbtransfer failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runExport(ctx context.Context, cfg config.TransferConfig, log ports.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "dump", "directory to write the table files to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.SourceURL == "" {
		return errors.New("SOURCE_DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.SourceURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect to source: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	counts, err := transfer.NewExporter(db, log).Export(ctx, *out)
	if err != nil {
		return err
	}
	log.Info("export finished", "dir", *out, "rows", counts)
	return nil
}

func runImport(ctx context.Context, cfg config.TransferConfig, log ports.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "dump", "directory holding the table files")
	truncate := fs.Bool("truncate", false, "empty the target tables before loading")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.TargetURL == "" {
		return errors.New("TARGET_DATABASE_URL is required")
	}

	if err := pgstore.Migrate(cfg.TargetURL); err != nil {
		return fmt.Errorf("migrate target: %w", err)
	}
	log.Info("target schema up to date")

	// COPY needs the lib/pq driver, registered by the postgres package.
	db, err := sql.Open("postgres", cfg.TargetURL)
	if err != nil {
		return fmt.Errorf("connect to target: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping target: %w", err)
	}

	counts, err := transfer.NewImporter(db, log).Import(ctx, *in, transfer.ImportOptions{Truncate: *truncate})
	if err != nil {
		return err
	}
	log.Info("import finished", "dir", *in, "rows", counts)
	return nil
}
