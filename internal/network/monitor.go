package network

import (
	"sync"

	"axonet/internal/model"
)

const defaultTapCapacity = 64

// Tap is the read-only monitoring stream of the network. Neuron units and
// ports push activity records into it; a collector goroutine accumulates
// them into a drainable store and fans them out to subscribers.
//
// Report never blocks: when the buffer is full the record is dropped.
// Monitoring must never hold up the signal path.
type Tap struct {
	records chan model.ActivityRecord
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	store   []model.ActivityRecord
	subs    map[int]chan model.ActivityRecord
	nextSub int
	closed  bool
}

func NewTap(capacity int) *Tap {
	if capacity <= 0 {
		capacity = defaultTapCapacity
	}
	t := &Tap{
		records: make(chan model.ActivityRecord, capacity),
		done:    make(chan struct{}),
		subs:    make(map[int]chan model.ActivityRecord),
	}
	t.wg.Add(1)
	go t.collect()
	return t
}

// Report enqueues a record without blocking; full buffer drops the record.
func (t *Tap) Report(rec model.ActivityRecord) {
	select {
	case t.records <- rec:
	default:
	}
}

func (t *Tap) collect() {
	defer t.wg.Done()
	for {
		select {
		case rec := <-t.records:
			t.dispatch(rec)
		case <-t.done:
			// drain what is already buffered before exiting
			for {
				select {
				case rec := <-t.records:
					t.dispatch(rec)
				default:
					return
				}
			}
		}
	}
}

func (t *Tap) dispatch(rec model.ActivityRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = append(t.store, rec)
	for _, sub := range t.subs {
		select {
		case sub <- rec:
		default:
		}
	}
}

// Drain returns the accumulated records and clears the store.
func (t *Tap) Drain() []model.ActivityRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.store
	t.store = nil
	return snapshot
}

// Subscribe registers a consumer channel with the given buffer. Records that
// do not fit the buffer are skipped for that subscriber. The returned cancel
// function unregisters and closes the channel.
func (t *Tap) Subscribe(buffer int) (<-chan model.ActivityRecord, func()) {
	if buffer <= 0 {
		buffer = defaultTapCapacity
	}
	ch := make(chan model.ActivityRecord, buffer)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		if sub, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(sub)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the collector and closes all subscriber channels. Records
// already collected stay available through Drain.
func (t *Tap) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	close(t.done)
	t.wg.Wait()

	t.mu.Lock()
	for id, sub := range t.subs {
		delete(t.subs, id)
		close(sub)
	}
	t.mu.Unlock()
}
