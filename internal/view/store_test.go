package view

import (
	"testing"
	"time"
)

func TestStore_AcquireCreatesStartedSession(t *testing.T) {
	st := NewStore(time.Minute)

	id, state, created := st.Acquire("")
	if !created || id == "" {
		t.Fatalf("expected new session, got id=%q created=%v", id, created)
	}
	if state.Snapshot().Phase != PhaseIdle {
		t.Error("expected new session to be started")
	}

	again, same, created := st.Acquire(id)
	if created || again != id || same != state {
		t.Error("expected existing session to be returned")
	}
}

func TestStore_UnknownIDGetsFreshSession(t *testing.T) {
	st := NewStore(time.Minute)

	id, _, created := st.Acquire("not-a-session")
	if !created || id == "not-a-session" {
		t.Errorf("expected fresh id, got %q", id)
	}
}

func TestStore_PrunesIdleSessions(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	st := NewStore(10 * time.Minute)
	st.now = func() time.Time { return now }

	idle, _, _ := st.Acquire("")
	busy, busyState, _ := st.Acquire("")
	if _, err := busyState.Begin("005930", ""); err != nil {
		t.Fatal(err)
	}

	now = now.Add(11 * time.Minute)
	_, _, _ = st.Acquire("")

	if _, _, created := st.Acquire(busy); created {
		t.Error("loading session must survive pruning")
	}
	if _, _, created := st.Acquire(idle); !created {
		t.Error("idle session should have been pruned")
	}
}
