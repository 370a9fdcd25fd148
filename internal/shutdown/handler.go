package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler ties the program context to SIGINT/SIGTERM and runs registered
// cleanups when the program ends.
type Handler struct {
	ctx      context.Context
	stop     context.CancelFunc
	mu       sync.Mutex
	cleanups []func() error
	once     sync.Once
	err      error
}

// New creates a Handler whose context is cancelled by an interrupt or by Close.
func New(parent context.Context) *Handler {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &Handler{ctx: ctx, stop: stop}
}

// Context returns the shutdown context
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers fn to run on Close. Cleanups run in reverse order.
func (h *Handler) AddCleanup(fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanups = append(h.cleanups, fn)
}

// Close cancels the context and runs the cleanups once, returning their
// joined errors.
func (h *Handler) Close() error {
	h.once.Do(func() {
		h.stop()

		h.mu.Lock()
		fns := h.cleanups
		h.cleanups = nil
		h.mu.Unlock()

		var errs []error
		for i := len(fns) - 1; i >= 0; i-- {
			if err := fns[i](); err != nil {
				errs = append(errs, err)
			}
		}
		h.err = errors.Join(errs...)
	})
	return h.err
}
