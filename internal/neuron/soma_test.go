package neuron

import "testing"

func TestSomaFlushesWhenAllActiveReported(t *testing.T) {
	s := NewSoma(0)

	if _, flushed := s.Absorb(0, 3, 2); flushed {
		t.Fatalf("expected no flush after first of two dendrites")
	}
	out, flushed := s.Absorb(1, 4, 2)
	if !flushed {
		t.Fatalf("expected flush after all active dendrites reported")
	}
	if out != 7 {
		t.Fatalf("expected flushed value 7, got=%d", out)
	}
	if s.Accumulator() != 0 {
		t.Fatalf("expected accumulator reset to bias, got=%d", s.Accumulator())
	}
}

func TestSomaDuplicateFlushesEarly(t *testing.T) {
	s := NewSoma(0)

	if _, flushed := s.Absorb(0, 3, 2); flushed {
		t.Fatalf("expected no flush on first arrival")
	}
	// second value on the same dendrite flushes the incomplete round; the
	// duplicate opens the next round
	out, flushed := s.Absorb(0, 5, 2)
	if !flushed {
		t.Fatalf("expected early flush on duplicate arrival")
	}
	if out != 3 {
		t.Fatalf("expected flushed value 3 without the duplicate, got=%d", out)
	}
	if s.Accumulator() != 5 {
		t.Fatalf("expected duplicate value to open the next round, got=%d", s.Accumulator())
	}
	if s.ReportedCount() != 1 {
		t.Fatalf("expected one dendrite reported in the new round, got=%d", s.ReportedCount())
	}
}

func TestSomaDuplicateBeatsSlowDendrite(t *testing.T) {
	s := NewSoma(0)

	// three fed dendrites; 0 and 1 answer, then 0 answers again before 2
	if _, flushed := s.Absorb(0, 1, 3); flushed {
		t.Fatalf("expected no flush on first arrival")
	}
	if _, flushed := s.Absorb(1, 2, 3); flushed {
		t.Fatalf("expected no flush while dendrite 2 is pending")
	}
	out, flushed := s.Absorb(0, 4, 3)
	if !flushed {
		t.Fatalf("expected immediate flush on the repeated dendrite")
	}
	if out != 3 {
		t.Fatalf("expected flushed value 3, got=%d", out)
	}
}

func TestSomaResetsToBias(t *testing.T) {
	s := NewSoma(10)

	out, flushed := s.Absorb(0, 3, 1)
	if !flushed {
		t.Fatalf("expected flush with a single active dendrite")
	}
	if out != 13 {
		t.Fatalf("expected bias plus contribution 13, got=%d", out)
	}
	if s.Accumulator() != 10 {
		t.Fatalf("expected accumulator back at bias 10, got=%d", s.Accumulator())
	}
}

func TestSomaNegativeOutputIsNotClamped(t *testing.T) {
	s := NewSoma(0)

	out, flushed := s.Absorb(0, -4, 1)
	if !flushed {
		t.Fatalf("expected flush with a single active dendrite")
	}
	if out != -4 {
		t.Fatalf("expected negative flush value -4, got=%d", out)
	}
}

func TestSomaZeroActiveFlushesEverySignal(t *testing.T) {
	s := NewSoma(1)

	for i := 0; i < 3; i++ {
		out, flushed := s.Absorb(0, 2, 0)
		if !flushed {
			t.Fatalf("expected every arrival to flush with no active dendrites")
		}
		if out != 3 {
			t.Fatalf("expected bias plus contribution 3, got=%d", out)
		}
	}
	if s.ResetCount() != 3 {
		t.Fatalf("expected 3 resets, got=%d", s.ResetCount())
	}
	if s.HitCount() != 3 {
		t.Fatalf("expected 3 hits, got=%d", s.HitCount())
	}
}
