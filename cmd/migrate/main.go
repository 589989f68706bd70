package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"minilibrary/internal/platform/postgres"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, reset, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(context.Background(), logger, *command, *name); err != nil {
		logger.Error("migrate failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, command, name string) error {
	s := loadSettings()

	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if err := goose.Create(nil, s.dir, name, "sql"); err != nil {
			return err
		}
		logger.Info("migration created", "name", name, "dir", s.dir)
		return nil
	}

	pool, err := postgres.Open(ctx, s.dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, s.dir)
	case "down":
		err = goose.DownContext(ctx, db, s.dir)
	case "reset":
		err = goose.ResetContext(ctx, db, s.dir)
	case "status":
		err = goose.StatusContext(ctx, db, s.dir)
	default:
		return fmt.Errorf("unknown command %q: use up, down, status, reset, create", command)
	}
	if err != nil {
		return err
	}
	logger.Info("migrations done", "command", command, "dsn", postgres.RedactDSN(s.dsn))
	return nil
}
