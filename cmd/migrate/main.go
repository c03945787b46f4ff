package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aoe-motors/lead-tracker/internal/bootstrap"
	"github.com/aoe-motors/lead-tracker/internal/config"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

const createVersions = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func main() {
	defer logger.Sync()

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	dbCfg := config.DatabaseConfig{URL: os.Getenv("DATABASE_URL"), MaxOpenConns: 2, MaxIdleConns: 1}
	if dbCfg.URL == "" {
		if cfg, err := config.LoadFromEnv(bootstrap.ConfigPath()); err == nil {
			dbCfg.URL = cfg.Database.URL
		}
	}

	ctx := context.Background()
	db, err := bootstrap.OpenDB(ctx, dbCfg)
	if err != nil {
		logger.Error("connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createVersions); err != nil {
		logger.Error("create schema_migrations", "error", err)
		os.Exit(1)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		logger.Error("read schema_migrations", "error", err)
		os.Exit(1)
	}

	files, err := migrationFiles(dir)
	if err != nil {
		logger.Error("read migrations dir", "dir", dir, "error", err)
		os.Exit(1)
	}

	if listOnly {
		for _, f := range files {
			state := "pending"
			if applied[f] {
				state = "applied"
			}
			fmt.Printf("  %-40s %s\n", f, state)
		}
		return
	}

	var okCount, skipCount int
	for _, f := range files {
		if applied[f] {
			skipCount++
			continue
		}
		path := filepath.Join(dir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read migration", "file", path, "error", err)
			os.Exit(1)
		}
		if err := apply(ctx, db, f, string(data)); err != nil {
			logger.Error("migration failed", "file", f, "error", err)
			os.Exit(1)
		}
		logger.Info("migration applied", "file", f)
		okCount++
	}
	logger.Info("migrations complete", "applied", okCount, "skipped", skipCount)
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

// apply runs one migration file and records it in the same transaction.
func apply(ctx context.Context, db *sql.DB, version, content string) error {
	if strings.TrimSpace(content) == "" {
		_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, content); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}
