package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/codex-reporting-api/internal/platform/config"
)

// seedsTable はシード適用履歴をスキーマのマイグレーション履歴と分けて管理するテーブルです。
const seedsTable = "schema_seeds"

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
		seedsDir      = flag.String("seeds", "assets/seeds", "directory containing seed files")
	)
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	if _, err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logrus.WithError(err).Fatal("failed to load dotenv")
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	dir, dsn := *migrationsDir, cfg.Database.DSN()
	if action == "seed" {
		dir, dsn = *seedsDir, withMigrationsTable(dsn, seedsTable)
		action = "up"
	}

	if err := runMigration(action, dir, dsn); err != nil {
		logrus.WithError(err).WithField("action", action).Fatal("migration failed")
	}

	logrus.WithFields(logrus.Fields{"action": action, "dir": dir}).Info("migration completed")
}

func withMigrationsTable(dsn, table string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	q.Set("x-migrations-table", table)
	u.RawQuery = q.Encode()
	return u.String()
}

func runMigration(action, dir, dsn string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logrus.Info("no migration applied")
				return nil
			}
			return err
		}
		logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("migration version")
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
