package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"techsel/pkg/config"
	"techsel/pkg/logger"
)

// Migrator применяет goose-миграции схемы решений из embed.FS.
// goose работает через database/sql, поэтому пул оборачивается
// stdlib-адаптером pgx на время миграции.
type Migrator struct {
	pool       *pgxpool.Pool
	migrations embed.FS
	dir        string
}

func NewMigrator(pool *pgxpool.Pool, migrations embed.FS, dir string) *Migrator {
	return &Migrator{pool: pool, migrations: migrations, dir: dir}
}

// Up применяет все недостающие миграции.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "apply", goose.UpContext)
}

// Down откатывает последнюю миграцию.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "rollback", goose.DownContext)
}

func (m *Migrator) run(ctx context.Context, verb string, op func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	goose.SetBaseFS(m.migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := op(ctx, db, m.dir); err != nil {
		return fmt.Errorf("failed to %s migrations: %w", verb, err)
	}

	logger.Log.Info("Migrations "+verb+" completed", "dir", m.dir)
	return nil
}

// RunMigrations применяет миграции при database.auto_migrate=true.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, cfg *config.DatabaseConfig, migrations embed.FS, dir string) error {
	if !cfg.AutoMigrate {
		logger.Log.Info("Auto-migration is disabled")
		return nil
	}

	return NewMigrator(pool, migrations, dir).Up(ctx)
}
