package eventlog

import (
	"context"
	"sync"

	"chain_chat/internal/model"
)

type (
	// MemoryLog backs tests and single-process demo nodes.
	MemoryLog struct {
		mu     sync.RWMutex
		seq    uint64
		events map[model.Hash][]model.MessageEvent
		stored []model.StoredEvent
	}
)

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		events: make(map[model.Hash][]model.MessageEvent),
	}
}

func (l *MemoryLog) NextSeq(_ context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return l.seq, nil
}

func (l *MemoryLog) Append(_ context.Context, ev *model.MessageEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[ev.ConversationID] = append(l.events[ev.ConversationID], *ev)
	return nil
}

func (l *MemoryLog) Range(_ context.Context, conversation model.Hash, from, limit int64) ([]model.MessageEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stream := l.events[conversation]
	return sliceRange(stream, from, limit), nil
}

func (l *MemoryLog) Len(_ context.Context, conversation model.Hash) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.events[conversation])), nil
}

func (l *MemoryLog) AppendStored(_ context.Context, ev *model.StoredEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stored = append(l.stored, *ev)
	return nil
}

func (l *MemoryLog) StoredEvents(_ context.Context, from, limit int64) ([]model.StoredEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sliceRange(l.stored, from, limit), nil
}

func sliceRange[T any](stream []T, from, limit int64) []T {
	if from < 0 {
		from = 0
	}
	if from >= int64(len(stream)) {
		return nil
	}
	end := int64(len(stream))
	if limit > 0 && from+limit < end {
		end = from + limit
	}
	out := make([]T, end-from)
	copy(out, stream[from:end])
	return out
}
