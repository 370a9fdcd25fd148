package lock

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Provider. Each name is a buffered channel whose
// capacity is the MaxHolders of the first acquisition for that name.
type Memory struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

// NewMemory creates an empty in-process lock provider.
func NewMemory() *Memory {
	return &Memory{sems: make(map[string]chan struct{})}
}

func (m *Memory) semaphore(name string, holders int) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	sem, ok := m.sems[name]
	if !ok {
		sem = make(chan struct{}, holders)
		m.sems[name] = sem
	}
	return sem
}

func (m *Memory) Acquire(ctx context.Context, name string, opts Options) (Handle, error) {
	opts = opts.WithDefaults()
	sem := m.semaphore(name, opts.MaxHolders)

	timer := time.NewTimer(opts.Wait)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
	case <-timer.C:
		return nil, ErrConflict
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	h := &memoryHandle{sem: sem}
	h.expiry = time.AfterFunc(opts.Lease, h.free)
	return h, nil
}

type memoryHandle struct {
	sem    chan struct{}
	once   sync.Once
	expiry *time.Timer
}

func (h *memoryHandle) free() {
	h.once.Do(func() { <-h.sem })
}

func (h *memoryHandle) Release(context.Context) error {
	h.expiry.Stop()
	h.free()
	return nil
}
