package platform

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func testPolicy() Policy {
	return Policy{
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BackoffFactor:  1,
	}
}

func TestSupervisorRestartsFailingUnit(t *testing.T) {
	supervisor := NewSupervisor(testPolicy())
	var calls atomic.Int32
	failures := int32(2)
	run := func(ctx context.Context) error {
		call := calls.Add(1)
		if call <= failures {
			return errors.New("boom")
		}
		<-ctx.Done()
		return ctx.Err()
	}
	if err := supervisor.Start("restarting", run); err != nil {
		t.Fatalf("start supervised unit: %v", err)
	}
	deadline := time.Now().Add(250 * time.Millisecond)
	for time.Now().Before(deadline) {
		if calls.Load() >= 3 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("expected unit restarts to reach at least 3 calls, got=%d", calls.Load())
	}
	supervisor.StopAll()
	if len(supervisor.Units()) != 0 {
		t.Fatalf("expected no units after stop all, got=%v", supervisor.Units())
	}
}

func TestSupervisorStopsUnitByName(t *testing.T) {
	supervisor := NewSupervisor(testPolicy())
	stopped := make(chan struct{})
	if err := supervisor.Start("named-stop", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	}); err != nil {
		t.Fatalf("start supervised unit: %v", err)
	}
	supervisor.Stop("named-stop")
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("unit did not observe stop")
	}
	if len(supervisor.Units()) != 0 {
		t.Fatalf("expected no units after stop, got=%v", supervisor.Units())
	}
}

func TestSupervisorRejectsDuplicateNames(t *testing.T) {
	supervisor := NewSupervisor(testPolicy())
	run := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := supervisor.Start("dup", run); err != nil {
		t.Fatalf("start supervised unit: %v", err)
	}
	if err := supervisor.Start("dup", run); err == nil {
		t.Fatalf("expected duplicate unit name to be rejected")
	}
	supervisor.StopAll()
}

func TestSupervisorTemporaryUnitNeverRestarts(t *testing.T) {
	supervisor := NewSupervisor(testPolicy())
	var calls atomic.Int32
	if err := supervisor.StartSpec(UnitSpec{Name: "temp", Restart: RestartTemporary}, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("start supervised unit: %v", err)
	}
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		if len(supervisor.Units()) == 0 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one run for a temporary unit, got=%d", got)
	}
}

func TestSupervisorMaxRestartsReportsPermanentFailure(t *testing.T) {
	policy := testPolicy()
	policy.MaxRestarts = 2

	permanent := make(chan string, 1)
	var restarts atomic.Int32
	supervisor := NewSupervisorWithHooks(policy, Hooks{
		OnUnitRestart: func(name string, err error, count int) {
			restarts.Add(1)
		},
		OnUnitPermanentFailure: func(name string, err error, count int) {
			permanent <- name
		},
	})

	if err := supervisor.Start("doomed", func(ctx context.Context) error {
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("start supervised unit: %v", err)
	}

	select {
	case name := <-permanent:
		if name != "doomed" {
			t.Fatalf("expected permanent failure for doomed, got=%s", name)
		}
	case <-time.After(time.Second):
		t.Fatalf("permanent failure hook never fired")
	}
	if got := restarts.Load(); got != 2 {
		t.Fatalf("expected 2 restart notifications before giving up, got=%d", got)
	}
}
