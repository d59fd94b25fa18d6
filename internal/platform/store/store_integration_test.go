//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("radar"),
		postgres.WithUsername("radar"),
		postgres.WithPassword("radar"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	return dsn
}

func TestPostgresRoundTrip(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := Open(ctx, Config{
		AppName: "narrativeradar-it",
		PG:      PGConfig{Enabled: true, URL: dsn, LogSQL: true, ConnectRetries: 5},
	}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}

	app, err := Scalar[string](ctx, s.PG, "SELECT current_setting('application_name')")
	if err != nil || app != "narrativeradar-it" {
		t.Fatalf("application_name = %q, %v", app, err)
	}

	err = s.PG.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, "CREATE TABLE kv (k text primary key, v int)"); err != nil {
			return err
		}
		return ExecOne(ctx, q, "INSERT INTO kv VALUES ($1, $2)", "a", 1)
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}

	got, err := Many(ctx, s.PG, func(r Row) (int, error) {
		var v int
		return v, r.Scan(&v)
	}, "SELECT v FROM kv")
	if err != nil || len(got) != 1 || got[0] != 1 {
		t.Fatalf("Many = %v, %v", got, err)
	}
}
