package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	kit "tasksync/internal/platform/testkit"
)

type execLog struct{ stmts []string }

func (e *execLog) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	e.stmts = append(e.stmts, sql)
	return nil, nil
}
func (e *execLog) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (e *execLog) QueryRow(context.Context, string, ...any) Row       { return nil }
func (e *execLog) Tx(_ context.Context, fn func(Queryer) error) error { return fn(e) }

func TestWithBeginHooks_StatementTimeout(t *testing.T) {
	inner := &execLog{}
	tx := WithBeginHooks(inner, StatementTimeout(1500*time.Millisecond))

	err := WithTx(context.Background(), tx, func(q Queryer) error {
		_, err := q.Exec(context.Background(), "UPDATE tasks SET status = $1", "Completed")
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if len(inner.stmts) != 2 || inner.stmts[0] != "SET LOCAL statement_timeout = 1500" {
		t.Fatalf("statements = %v", inner.stmts)
	}
}

func TestWithBeginHooks_HookErrorStopsWork(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	tx := WithBeginHooks(&execLog{}, func(context.Context, Queryer) error { return boom })
	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
	if WithBeginHooks(&execLog{}) == nil {
		t.Fatalf("no hooks should return inner")
	}
}

func TestMustBind(t *testing.T) {
	b := BindFunc[string](func(Queryer) string { return "bound" })
	if got := MustBind[string](b, &execLog{}); got != "bound" {
		t.Fatalf("MustBind = %q", got)
	}
	kit.MustPanic(t, func() { _ = MustBind[string](b, nil) })
}

type guardFn func(context.Context) error

func (g guardFn) Guard(ctx context.Context) error { return g(ctx) }

func TestMustGuard(t *testing.T) {
	var hadDeadline bool
	MustGuard(context.Background(), guardFn(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}))
	if !hadDeadline {
		t.Fatalf("MustGuard should bound the guard call")
	}

	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(error).Error(), "pg down") {
			t.Fatalf("recovered %v", r)
		}
	}()
	MustGuard(context.Background(), guardFn(func(context.Context) error { return errors.New("pg down") }))
}
