package neuron

// Soma is the accumulate/flush state machine at the heart of a neuron. It
// sums weighted dendrite contributions and decides when the round is over.
//
// A flush fires when either every actively fed dendrite has contributed one
// value since the last flush, or a dendrite contributes a second value before
// the round completes. The duplicate check is evaluated first: when both
// conditions become true on the same arrival, the early-flush path wins and
// the duplicate value opens the next round.
type Soma struct {
	bias        int
	accumulator int
	reported    map[int]struct{}
	resetCount  uint64
	hitCount    uint64
}

func NewSoma(bias int) *Soma {
	return &Soma{
		bias:        bias,
		accumulator: bias,
		reported:    make(map[int]struct{}),
	}
}

// Absorb registers one weighted value contributed by the dendrite at index
// idx. activeCount is the number of dendrites currently fed by a live
// upstream. It returns the flushed accumulator value and true when the
// arrival closed a round.
func (s *Soma) Absorb(idx, weighted, activeCount int) (int, bool) {
	s.hitCount++

	if _, dup := s.reported[idx]; dup {
		out := s.reset()
		s.register(idx, weighted)
		return out, true
	}

	s.register(idx, weighted)
	if len(s.reported) >= activeCount {
		return s.reset(), true
	}
	return 0, false
}

func (s *Soma) register(idx, weighted int) {
	s.accumulator += weighted
	s.reported[idx] = struct{}{}
}

// reset flushes the accumulator back to the bias and opens a new round.
// The bias, not zero, guarantees a defined output even for a silent round.
func (s *Soma) reset() int {
	out := s.accumulator
	s.accumulator = s.bias
	s.reported = make(map[int]struct{})
	s.resetCount++
	return out
}

func (s *Soma) Accumulator() int {
	return s.accumulator
}

func (s *Soma) Bias() int {
	return s.bias
}

// ReportedCount is the number of dendrites heard from in the current round.
func (s *Soma) ReportedCount() int {
	return len(s.reported)
}

func (s *Soma) ResetCount() uint64 {
	return s.resetCount
}

func (s *Soma) HitCount() uint64 {
	return s.hitCount
}
