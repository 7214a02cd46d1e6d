package db

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/monarena/internal/testutil"
	"github.com/udisondev/monarena/internal/testutil/pgtest"
)

// testDB — общий контейнер для всех тестов пакета; nil в режиме -short.
var testDB *pgtest.DB

// TestMain поднимает PostgreSQL testcontainer один раз на пакет.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	var err error
	testDB, err = pgtest.Start(context.Background())
	if err != nil {
		log.Fatalf("starting test db: %v", err)
	}

	code := m.Run()

	if err := testDB.Close(); err != nil {
		log.Printf("stopping test db: %v", err)
	}
	os.Exit(code)
}

// setupTestDB возвращает общий пул с пустыми таблицами и context теста.
func setupTestDB(tb testing.TB) (*pgxpool.Pool, context.Context) {
	tb.Helper()
	if testDB == nil {
		tb.Skip("skipping database test in short mode")
	}

	testDB.Reset(tb)
	return testDB.Pool, testutil.ContextWithTimeout(tb, 30*time.Second)
}
