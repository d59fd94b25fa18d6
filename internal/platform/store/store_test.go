package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"narrativeradar/internal/platform/config"
	"narrativeradar/internal/platform/store/ch"
	kit "narrativeradar/internal/platform/testkit"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_PG_URL", "postgres://u:p@db:5432/radar")
	t.Setenv("STORE_PG_MAX_CONNS", "9")
	t.Setenv("STORE_CH_URL", "clickhouse://ch:9000/radar")
	t.Setenv("STORE_CH_ENABLED", "false")
	t.Setenv("STORE_REDIS_ADDR", "")

	cfg := ConfigFromEnv(config.New())
	if !cfg.PG.Enabled || cfg.PG.URL != "postgres://u:p@db:5432/radar" || cfg.PG.MaxConns != 9 {
		t.Fatalf("pg = %+v", cfg.PG)
	}
	if cfg.PG.ConnectRetries != DefaultConnectRetries || cfg.PG.PingTimeout != DefaultPingTimeout {
		t.Fatalf("pg boot defaults = %+v", cfg.PG)
	}
	if cfg.CH.Enabled {
		t.Fatalf("explicit CH_ENABLED=false ignored")
	}
	if cfg.RDS.Enabled {
		t.Fatalf("redis enabled without an address")
	}
	if cfg.AppName != "narrativeradar" {
		t.Fatalf("app name = %q", cfg.AppName)
	}
}

func TestOpenNothingEnabled(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH != nil || s.RDS != nil {
		t.Fatalf("unexpected backends: %+v", s)
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenPGBadURL(t *testing.T) {
	_, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}})
	if err == nil {
		t.Fatalf("expected error for malformed postgres url")
	}
}

func TestOpenCHBadURL(t *testing.T) {
	_, err := Open(context.Background(), Config{CH: CHConfig{Enabled: true, URL: "http://nope"}})
	if err == nil {
		t.Fatalf("expected error for unsupported clickhouse scheme")
	}
}

func TestOpenRedisPingsAndGuards(t *testing.T) {
	kit.Serial(t)
	db, mock := redismock.NewClientMock()
	kit.Swap(t, &newRedis, func(*redis.Options) *redis.Client { return db })

	mock.ExpectPing().SetVal("PONG")
	s, err := Open(context.Background(), Config{RDS: RedisConfig{Enabled: true, Addr: "cache:6379"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.RDS != db {
		t.Fatalf("redis client not stored")
	}

	mock.ExpectPing().SetErr(errors.New("down"))
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("Guard should surface the redis ping failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("redis expectations: %v", err)
	}
}

func TestOpenRedisPingFailure(t *testing.T) {
	kit.Serial(t)
	db, mock := redismock.NewClientMock()
	kit.Swap(t, &newRedis, func(*redis.Options) *redis.Client { return db })
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	if _, err := Open(context.Background(), Config{RDS: RedisConfig{Enabled: true, Addr: "x"}}); err == nil {
		t.Fatalf("expected redis ping error")
	}
}

func TestGuardNil(t *testing.T) {
	var s *Store
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should fail Guard")
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("sleep = %v", err)
	}
}

type fakeCH struct {
	inserted [][]any
	table    string
	pingErr  error
	closed   bool
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.inserted = table, rows
	return nil
}
func (f *fakeCH) Query(context.Context, string, ...any) (ch.Rows, error) {
	return nil, errors.New("no query")
}
func (f *fakeCH) Exec(context.Context, string, ...any) error { return nil }
func (f *fakeCH) Ping(context.Context) error                 { return f.pingErr }
func (f *fakeCH) Close() error                               { f.closed = true; return nil }

func TestClickhouseAdapter(t *testing.T) {
	f := &fakeCH{}
	a := newCHAdapter(f)

	if err := a.Insert(context.Background(), "narrative_scores", "bad"); err == nil {
		t.Fatalf("expected shape error")
	}
	rows := [][]any{{"run", "AI", 90.5}}
	if err := a.Insert(context.Background(), "narrative_scores", rows); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if f.table != "narrative_scores" || len(f.inserted) != 1 {
		t.Fatalf("insert not forwarded: %+v", f)
	}
	if _, err := a.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("query error swallowed")
	}

	f.pingErr = errors.New("ch down")
	s := &Store{CH: a}
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("Guard should report ch failure")
	}
	if err := s.Close(context.Background()); err != nil || !f.closed {
		t.Fatalf("Close: %v closed=%v", err, f.closed)
	}
}
