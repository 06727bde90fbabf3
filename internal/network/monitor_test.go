package network

import (
	"testing"
	"time"

	"axonet/internal/model"
)

func waitForRecords(t *testing.T, tap *Tap, want int) []model.ActivityRecord {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		tap.mu.Lock()
		n := len(tap.store)
		tap.mu.Unlock()
		if n >= want {
			return tap.Drain()
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d tap records", want)
	return nil
}

func TestTapCollectsAndDrains(t *testing.T) {
	tap := NewTap(8)
	defer tap.Close()

	tap.Report(model.ActivityRecord{ID: "a", Kind: model.EventReceive, Value: 1})
	tap.Report(model.ActivityRecord{ID: "a", Kind: model.EventFlush, Value: 2})

	records := waitForRecords(t, tap, 2)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got=%d", len(records))
	}
	if records[0].Kind != model.EventReceive || records[1].Kind != model.EventFlush {
		t.Fatalf("expected records in arrival order, got=%+v", records)
	}
	if got := tap.Drain(); len(got) != 0 {
		t.Fatalf("expected empty store after drain, got=%d", len(got))
	}
}

func TestTapSubscribeReceivesLiveRecords(t *testing.T) {
	tap := NewTap(8)
	defer tap.Close()

	stream, cancel := tap.Subscribe(4)
	defer cancel()

	tap.Report(model.ActivityRecord{ID: "n", Kind: model.EventFlush, Value: 9})

	select {
	case rec := <-stream:
		if rec.Value != 9 {
			t.Fatalf("expected subscribed record value 9, got=%d", rec.Value)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber never received the record")
	}
}

func TestTapCloseIsTerminalAndIdempotent(t *testing.T) {
	tap := NewTap(8)
	stream, _ := tap.Subscribe(1)

	tap.Report(model.ActivityRecord{ID: "n", Kind: model.EventFlush})
	waitForRecords(t, tap, 1)

	tap.Close()
	tap.Close()

	if _, open := <-stream; open {
		// one buffered record may arrive first; the channel must then close
		if _, stillOpen := <-stream; stillOpen {
			t.Fatalf("expected subscriber channel closed after tap close")
		}
	}

	// reports after close are dropped silently
	tap.Report(model.ActivityRecord{ID: "late"})
	if got := tap.Drain(); len(got) != 0 {
		t.Fatalf("expected nothing collected after close, got=%d", len(got))
	}
}
