package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"grocery-analytics/internal/models"
)

// scriptedComputer задерживает первый вызов до отмены контекста, остальные завершает сразу.
type scriptedComputer struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	err     error
}

func newScriptedComputer() *scriptedComputer {
	return &scriptedComputer{started: make(chan struct{}, 4)}
}

func (c *scriptedComputer) Compute(ctx context.Context, now time.Time, rng models.ReportRange) (*models.Snapshot, error) {
	c.mu.Lock()
	c.calls++
	call := c.calls
	c.mu.Unlock()

	c.started <- struct{}{}
	if call == 1 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.err != nil {
		return nil, c.err
	}
	return &models.Snapshot{GeneratedAt: now, Range: rng}, nil
}

func TestSession_NewerRequestSupersedes(t *testing.T) {
	computer := newScriptedComputer()
	session := NewSession(computer)

	first := make(chan error, 1)
	go func() {
		_, err := session.Recompute(context.Background(), testNow, models.RangeWeek)
		first <- err
	}()
	<-computer.started

	snapshot, err := session.Recompute(context.Background(), testNow, models.RangeMonth)
	if err != nil {
		t.Fatalf("newest recompute must succeed: %v", err)
	}
	if snapshot.Range != models.RangeMonth {
		t.Fatalf("expected month snapshot, got %s", snapshot.Range)
	}

	select {
	case err := <-first:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("expected superseded error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("superseded recompute was not cancelled")
	}

	if _, ok := session.Last(models.RangeWeek); ok {
		t.Fatalf("superseded result must not be stored")
	}
	if last, ok := session.Last(models.RangeMonth); !ok || last != snapshot {
		t.Fatalf("expected last month snapshot stored")
	}
	if session.Generation() != 2 {
		t.Fatalf("expected generation 2, got %d", session.Generation())
	}
}

func TestSession_Cancel(t *testing.T) {
	computer := newScriptedComputer()
	session := NewSession(computer)

	done := make(chan error, 1)
	go func() {
		_, err := session.Recompute(context.Background(), testNow, models.RangeWeek)
		done <- err
	}()
	<-computer.started

	session.Cancel()
	select {
	case err := <-done:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("expected superseded after cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancel did not stop recompute")
	}

	// Повторная отмена без активного пересчета ничего не меняет.
	gen := session.Generation()
	session.Cancel()
	if session.Generation() != gen {
		t.Fatalf("idle cancel must not bump generation")
	}
}

func TestSession_ErrorKeepsPreviousSnapshot(t *testing.T) {
	computer := newScriptedComputer()
	computer.calls = 1
	session := NewSession(computer)

	good, err := session.Recompute(context.Background(), testNow, models.RangeWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	computer.err = errors.New("db down")
	if _, err := session.Recompute(context.Background(), testNow, models.RangeWeek); err == nil || err.Error() != "db down" {
		t.Fatalf("expected computer error, got %v", err)
	}

	if last, ok := session.Last(models.RangeWeek); !ok || last != good {
		t.Fatalf("failed recompute must keep previous snapshot")
	}
}

func TestSessionRegistry(t *testing.T) {
	registry := NewSessionRegistry(newScriptedComputer(), time.Minute)

	a := registry.Get("client-a")
	if registry.Get("client-a") != a {
		t.Fatalf("expected same session for same key")
	}
	if registry.Get("client-b") == a {
		t.Fatalf("expected distinct session for another key")
	}
	if registry.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", registry.Len())
	}

	if removed := registry.Prune(time.Now()); removed != 0 {
		t.Fatalf("fresh sessions must survive, removed %d", removed)
	}
	if removed := registry.Prune(time.Now().Add(2 * time.Minute)); removed != 2 {
		t.Fatalf("expected both idle sessions removed, got %d", removed)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", registry.Len())
	}

	unbounded := NewSessionRegistry(newScriptedComputer(), 0)
	unbounded.Get("x")
	if removed := unbounded.Prune(time.Now().Add(time.Hour)); removed != 0 || unbounded.Len() != 1 {
		t.Fatalf("zero idle must disable pruning")
	}
}
