package realtime

import (
	"sync"

	"github.com/itxrex07/x/internal/observability"
)

// State is the position of the pre-ready buffer state machine.
type State int

const (
	// StateBuffering queues every inbound raw event instead of processing it.
	StateBuffering State = iota
	// StateDraining replays queued events in arrival order.
	StateDraining
	// StateLive processes inbound events immediately; the queue is bypassed.
	StateLive
)

func (s State) String() string {
	switch s {
	case StateBuffering:
		return "buffering"
	case StateDraining:
		return "draining"
	default:
		return "live"
	}
}

type entryKind int

const (
	entryRealtime entryKind = iota
	entryPush
)

// bufferEntry is one queued raw event, realtime or push, in arrival order.
type bufferEntry struct {
	kind    entryKind
	topic   string
	payload []byte
}

// preReadyBuffer queues raw events until the readiness edge. No signalling
// channel is needed because draining happens inline on the readiness call.
type preReadyBuffer struct {
	mu    sync.Mutex
	state State
	queue []bufferEntry
}

// enqueue appends the entry when not yet live and reports whether it was
// buffered. Entries arriving mid-drain keep their arrival order behind the
// queued backlog.
func (b *preReadyBuffer) enqueue(entry bufferEntry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateLive {
		return false
	}
	b.queue = append(b.queue, entry)
	observability.SetBufferDepth(len(b.queue))
	return true
}

// beginDrain flips Buffering to Draining; it reports false when the edge was
// already consumed.
func (b *preReadyBuffer) beginDrain() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateBuffering {
		return false
	}
	b.state = StateDraining
	return true
}

// next pops the oldest entry; once the queue is empty the buffer goes Live.
func (b *preReadyBuffer) next() (bufferEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		b.state = StateLive
		b.queue = nil
		observability.SetBufferDepth(0)
		return bufferEntry{}, false
	}
	entry := b.queue[0]
	b.queue[0] = bufferEntry{}
	b.queue = b.queue[1:]
	observability.SetBufferDepth(len(b.queue))
	return entry, true
}

func (b *preReadyBuffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateBuffering
	b.queue = nil
	observability.SetBufferDepth(0)
}

func (b *preReadyBuffer) current() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *preReadyBuffer) depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
