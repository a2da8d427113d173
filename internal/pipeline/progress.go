package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/constants"
)

// ProgressEvent is one observed point in a file's lifecycle. Events for
// a single file are published in non-decreasing progress order; no
// ordering holds across files.
type ProgressEvent struct {
	FileID   uuid.UUID            `json:"fileId"`
	Status   constants.FileStatus `json:"status"`
	Progress int                  `json:"progress"`
	Error    *string              `json:"error,omitempty"`
}

// ProgressBroadcaster fans pipeline events out to subscribers. Slow
// subscribers lose events rather than stalling the pipeline; since each
// file's stream is monotone, any observed subsequence is too.
type ProgressBroadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ProgressEvent

	// last progress seen per file, guarding monotonicity even if a
	// publisher misbehaves
	last map[uuid.UUID]int
}

func NewProgressBroadcaster() *ProgressBroadcaster {
	return &ProgressBroadcaster{
		subs: make(map[int]chan ProgressEvent),
		last: make(map[uuid.UUID]int),
	}
}

// Subscribe returns a channel of events and a cancel func. The channel
// is closed on cancel.
func (b *ProgressBroadcaster) Subscribe() (<-chan ProgressEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan ProgressEvent, 64)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber. An event whose
// progress is below the file's last published value is clamped up, so
// observers never see the number go backwards.
func (b *ProgressBroadcaster) Publish(ev ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.last[ev.FileID]; ok && ev.Progress < prev {
		ev.Progress = prev
	}
	b.last[ev.FileID] = ev.Progress
	if ev.Status.Terminal() {
		delete(b.last, ev.FileID)
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
