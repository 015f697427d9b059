package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "tasksync/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"  nonsense ", "info"},
	}
	for _, c := range cases {
		if got := parseLevel(c.in).String(); got != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInit_NamedAndRunFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "debug",
		Format:       "console",
		Service:      "tasksync-test",
		Writer:       &buf,
		SampleEvery:  2,
		StaticFields: map[string]string{"build": "test"},
	})

	one := &zerolog.BasicSampler{N: 1}

	r := Get().Sample(one)
	r.Info().Msg("root-msg")

	n := Named("finder").Sample(one)
	n.Info().Msg("named-msg")

	ctx := WithRun(WithRequest(context.Background(), "req-1"), "run-9", "standup-01")
	c := C(ctx).Sample(one)
	c.Info().Msg("ctx-msg")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "finder")
	kit.MustContain(t, out, "request_id=")
	kit.MustContain(t, out, "req-1")
	kit.MustContain(t, out, "run_id=")
	kit.MustContain(t, out, "run-9")
	kit.MustContain(t, out, "transcript_id=")
	kit.MustContain(t, out, "standup-01")
	kit.MustContain(t, out, "service=")
	kit.MustContain(t, out, "build=")

	if RunID(ctx) != "run-9" {
		t.Fatalf("RunID = %q", RunID(ctx))
	}
	if RunID(context.Background()) != "" {
		t.Fatalf("RunID on empty ctx should be blank")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "svc-b" {
		t.Fatalf("FromEnv mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LOG_SERVICE", "")
	opt := FromEnv()
	if !strings.EqualFold(opt.Service, "tasksync") {
		t.Fatalf("default service = %q", opt.Service)
	}
}

func TestWithRequest_Empty(t *testing.T) {
	ctx := WithRequest(context.Background(), "")
	if ctx != context.Background() {
		t.Fatalf("empty request id should not wrap ctx")
	}
}
