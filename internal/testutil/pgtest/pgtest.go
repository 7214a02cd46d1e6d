// Package pgtest поднимает PostgreSQL testcontainer с журналом битв.
// Вынесен из testutil, чтобы тесты без базы не тянули testcontainers.
package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/monarena/internal/db/migrations"
)

// DB — запущенный контейнер с применёнными миграциями.
type DB struct {
	Pool      *pgxpool.Pool
	DSN       string
	container *postgres.PostgresContainer
}

// Start запускает PostgreSQL 16 и применяет embedded миграции.
// Один контейнер на пакет: вызывается из TestMain.
func Start(ctx context.Context) (*DB, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("monarena"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	d := &DB{container: container}

	if d.DSN, err = container.ConnectionString(ctx, "sslmode=disable"); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("getting connection string: %w", err)
	}
	if d.Pool, err = pgxpool.New(ctx, d.DSN); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("connecting to test db: %w", err)
	}
	if err := migrate(ctx, d.Pool); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// migrate применяет миграции через goose поверх пула.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB, err := sql.Open("pgx", stdlib.RegisterConnConfig(pool.Config().ConnConfig))
	if err != nil {
		return fmt.Errorf("opening sql.DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	return nil
}

// Reset очищает журнал битв между тестами.
func (d *DB) Reset(tb testing.TB) {
	tb.Helper()
	if _, err := d.Pool.Exec(context.Background(), "TRUNCATE battles CASCADE"); err != nil {
		tb.Fatalf("truncating battles: %v", err)
	}
}

// Close закрывает пул и останавливает контейнер.
func (d *DB) Close() error {
	if d.Pool != nil {
		d.Pool.Close()
	}
	return testcontainers.TerminateContainer(d.container)
}
