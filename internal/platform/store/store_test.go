package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type pingQ struct {
	fakeQ
	pingErr error
	closed  bool
}

func (p *pingQ) Ping(context.Context) error                               { return p.pingErr }
func (p *pingQ) Close() error                                             { p.closed = true; return nil }
func (p *pingQ) Tx(ctx context.Context, fn func(q RowQuerier) error) error { return fn(p) }

type fakeCH struct {
	pingErr  error
	closeErr error
	closed   bool
}

func (f *fakeCH) Insert(context.Context, string, [][]any) error       { return nil }
func (f *fakeCH) Exec(context.Context, string, ...any) error           { return nil }
func (f *fakeCH) Query(context.Context, string, ...any) (Rows, error) { return &fakeRows{}, nil }
func (f *fakeCH) Ping(context.Context) error                          { return f.pingErr }
func (f *fakeCH) Close() error                                        { f.closed = true; return f.closeErr }

func TestOpen_NothingEnabled(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("disabled backends should stay nil")
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
}

func TestGuard_JoinsFailures(t *testing.T) {
	s := &Store{
		PG: &pingQ{pingErr: errors.New("refused")},
		CH: &fakeCH{pingErr: errors.New("timeout")},
	}
	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("Guard should fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, "pg: refused") || !strings.Contains(msg, "ch: timeout") {
		t.Fatalf("Guard error = %q", msg)
	}

	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatalf("nil store should fail Guard")
	}
}

func TestClose(t *testing.T) {
	pgq := &pingQ{}
	c := &fakeCH{closeErr: errors.New("already closed")}
	s := &Store{PG: pgq, CH: c}
	err := s.Close(context.Background())
	if !pgq.closed || !c.closed {
		t.Fatalf("Close should release both backends")
	}
	if err == nil || !strings.Contains(err.Error(), "already closed") {
		t.Fatalf("Close error = %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u:p@localhost:5432/tasks")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "8")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "")

	cfg := ConfigFromEnv("api")
	if !cfg.PG.Enabled || cfg.PG.MaxConns != 8 {
		t.Fatalf("pg config = %+v", cfg.PG)
	}
	if cfg.CH.Enabled {
		t.Fatalf("ch without DBURL should be disabled")
	}
	if cfg.CH.ClientName != "tasksync" || cfg.CH.ClientTag != "api" {
		t.Fatalf("ch client = %q/%q", cfg.CH.ClientName, cfg.CH.ClientTag)
	}
}
