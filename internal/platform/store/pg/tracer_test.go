package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"tasksync/internal/platform/logger"

	"github.com/rs/zerolog"
)

func TestTracer_LogsCompactSQL(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	tr := Tracer(root)

	ctx := logger.WithRun(context.Background(), "run-1", "standup-1")
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT *\n\t FROM tasks\n WHERE id = $1", Args: []any{"SP-1"}, ElapsedUS: 1500})

	out := buf.String()
	if !strings.Contains(out, `"sql":"SELECT * FROM tasks WHERE id = $1"`) {
		t.Fatalf("sql not compacted: %s", out)
	}
	if !strings.Contains(out, `"component":"pg"`) || !strings.Contains(out, `"run_id":"run-1"`) {
		t.Fatalf("missing fields: %s", out)
	}
}

func TestTracer_SlowAndErrorsWarn(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf))

	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", Slow: true})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 2", Err: errors.New("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if !strings.Contains(l, `"level":"warn"`) {
			t.Fatalf("want warn level: %s", l)
		}
	}
}

func TestOpen_BadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "::not a url"}, nil, nil); err == nil {
		t.Fatalf("Open should reject a malformed url")
	}
}
