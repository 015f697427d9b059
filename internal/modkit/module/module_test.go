package module

import (
	"testing"

	phttp "tasksync/internal/platform/net/http"
	kit "tasksync/internal/platform/testkit"
)

type snapshotPort interface{ Snapshot() int }
type notifierPort interface{ Notify() string }

type snap struct{ n int }

func (s snap) Snapshot() int { return s.n }

type stub struct {
	name  string
	ports any
}

func (s stub) MountRoutes(phttp.Router) {}
func (s stub) Ports() any               { return s.ports }
func (s stub) Name() string             { return s.name }

type portSet struct {
	Snapshots snapshotPort
	hidden    notifierPort
}

func TestPortsOf(t *testing.T) {
	direct := stub{name: "tasks", ports: snap{n: 3}}
	if p, ok := PortsOf[snapshotPort](direct); !ok || p.Snapshot() != 3 {
		t.Fatalf("direct port lookup failed")
	}

	field := stub{name: "tasks", ports: &portSet{Snapshots: snap{n: 7}}}
	if p, ok := PortsOf[snapshotPort](field); !ok || p.Snapshot() != 7 {
		t.Fatalf("field port lookup failed")
	}

	if _, ok := PortsOf[notifierPort](field); ok {
		t.Fatalf("unexported fields must not be visible")
	}
	if _, ok := PortsOf[snapshotPort](stub{}); ok {
		t.Fatalf("nil ports should report false")
	}
	if _, ok := PortsOf[snapshotPort](nil); ok {
		t.Fatalf("nil module should report false")
	}
}

func TestMustPortsOf_Panics(t *testing.T) {
	kit.MustPanic(t, func() { _ = MustPortsOf[notifierPort](stub{name: "sync"}) })
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("tasks", snap{n: 1})
	if p, ok := PortsAs[snapshotPort]("tasks"); !ok || p.Snapshot() != 1 {
		t.Fatalf("PortsAs failed")
	}
	if _, ok := PortsAs[notifierPort]("tasks"); ok {
		t.Fatalf("wrong type should report false")
	}
	if _, ok := PortsAs[snapshotPort]("missing"); ok {
		t.Fatalf("missing name should report false")
	}
}
