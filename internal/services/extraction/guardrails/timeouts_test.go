package guardrails

import (
	"context"
	"testing"
	"time"
)

func TestChildNeverExtendsParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, c2 := WithRun(parent, Timeouts{Run: time.Hour})
	defer c2()
	if rem := Remaining(ctx); rem <= 0 || rem > 50*time.Millisecond {
		t.Fatalf("remaining = %v", rem)
	}
}

func TestZeroBudgetInheritsParent(t *testing.T) {
	ctx, cancel := ForLLM(context.Background(), Timeouts{})
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("zero budget must not add a deadline")
	}
	cancel()
	if ctx.Err() == nil {
		t.Fatalf("child should still be cancelable")
	}
}

func TestBudgetApplies(t *testing.T) {
	ctx, cancel := ForSnapshot(context.Background(), Timeouts{Snapshot: time.Second})
	defer cancel()
	if rem := Remaining(ctx); rem <= 0 || rem > time.Second {
		t.Fatalf("remaining = %v", rem)
	}
	if Remaining(context.Background()) != 0 {
		t.Fatalf("no deadline means zero")
	}
}
