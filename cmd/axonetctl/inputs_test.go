package main

import "testing"

func TestParseInputs(t *testing.T) {
	events, err := parseInputs("0:3, 0:4 ,1:-2")
	if err != nil {
		t.Fatalf("parse inputs: %v", err)
	}
	want := []inputEvent{{Port: 0, Value: 3}, {Port: 0, Value: 4}, {Port: 1, Value: -2}}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got=%v", len(want), events)
	}
	for i, ev := range events {
		if ev != want[i] {
			t.Fatalf("event %d mismatch: got=%+v want=%+v", i, ev, want[i])
		}
	}
}

func TestParseInputsEmpty(t *testing.T) {
	events, err := parseInputs("  ")
	if err != nil {
		t.Fatalf("parse inputs: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got=%v", events)
	}
}

func TestParseInputsRejectsMalformed(t *testing.T) {
	for _, spec := range []string{"0", "a:1", "0:b", "-1:2"} {
		if _, err := parseInputs(spec); err == nil {
			t.Fatalf("expected %q to be rejected", spec)
		}
	}
}
