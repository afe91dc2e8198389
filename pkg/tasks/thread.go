package tasks

import (
	"github.com/df07/go-spectral-kernel/pkg/core"
	"go.uber.org/zap"
)

// ExternalThread lets a goroutine outside the pool execute queued chunks
type ExternalThread struct {
	s  *Scheduler
	id uint32
}

// RegisterThread reserves a thread ID for the calling goroutine
func (s *Scheduler) RegisterThread() (*ExternalThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.registered >= s.reserved {
		return nil, ErrNoThreadSlots
	}
	s.registered++
	id := uint32(s.numWorkers + s.registered)
	core.Logger().Debug("external thread registered", zap.Uint32("thread", id))
	return &ExternalThread{s: s, id: id}, nil
}

// ID is the thread ID passed to tasks run by this thread
func (t *ExternalThread) ID() uint32 {
	return t.id
}

// Wait executes queued chunks until the task behind h completes, then frees it
// like Scheduler.Wait
func (t *ExternalThread) Wait(h *Handle) {
	for !t.s.Completed(*h) {
		c, task, ok := t.s.tryNext()
		if !ok {
			break
		}
		t.s.run(c, task, t.id)
	}
	t.s.Wait(h)
}
