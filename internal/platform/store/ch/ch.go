// Package ch wraps clickhouse-go for append-only ledger tables
package ch

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog"
)

// Config configures the clickhouse connection
type Config struct {
	URL        string
	ClientName string
	ClientTag  string
}

// Rows is the result set surface callers need
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH is a clickhouse connection with optional statement logging
type CH struct {
	Conn  driver.Conn
	Log   zerolog.Logger
	Trace bool
}

var openConn = clickhouse.Open

// Open parses the DSN and opens a connection. The first network round trip
// happens on Ping or the first statement
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(cfg.ClientName, cfg.ClientTag)
	conn, err := openConn(opts)
	if err != nil {
		return nil, fmt.Errorf("ch: open: %w", err)
	}
	return &CH{Conn: conn, Log: zerolog.Nop()}, nil
}

// Insert appends rows to table in a single batch
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	batch, err := c.Conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("ch: prepare %s: %w", table, err)
	}
	for i, r := range rows {
		if err := batch.Append(r...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("ch: append %s row %d: %w", table, i, err)
		}
	}
	err = batch.Send()
	c.trace("insert "+table, start, len(rows), err)
	if err != nil {
		return fmt.Errorf("ch: send %s: %w", table, err)
	}
	return nil
}

// Exec runs a statement that returns no rows (DDL, mutations)
func (c *CH) Exec(ctx context.Context, sql string, args ...any) error {
	start := time.Now()
	err := c.Conn.Exec(ctx, sql, args...)
	c.trace(sql, start, -1, err)
	return err
}

// Query runs a select
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := c.Conn.Query(ctx, sql, args...)
	c.trace(sql, start, -1, err)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Ping checks connectivity
func (c *CH) Ping(ctx context.Context) error { return c.Conn.Ping(ctx) }

// Close closes the connection
func (c *CH) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}

func (c *CH) trace(stmt string, start time.Time, n int, err error) {
	if !c.Trace {
		return
	}
	evt := c.Log.Debug()
	if err != nil {
		evt = c.Log.Warn().Err(err)
	}
	if n >= 0 {
		evt = evt.Int("rows", n)
	}
	evt.Dur("elapsed", time.Since(start)).Str("sql", stmt).Msg("ch statement")
}
