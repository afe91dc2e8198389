// Package tasks runs range-partitioned work on a fixed pool of goroutines.
//
// A scheduled task is split into chunks of [begin, end) and handed to the
// workers. Tasks live in a fixed-capacity arena and are referred to by Handle;
// waiting on a handle frees its slot and invalidates the handle.
package tasks

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"go.uber.org/zap"
)

var (
	ErrPoolExhausted = errors.New("task pool exhausted")
	ErrInvalidHandle = errors.New("invalid task handle")
	ErrNoThreadSlots = errors.New("no external thread slots left")
	ErrClosed        = errors.New("scheduler closed")
)

// DefaultCapacity is the number of tasks that may be outstanding at once
const DefaultCapacity = 1024

// Task processes the items in [begin, end). threadID is 0 for the thread that
// runs ExecuteLinear, 1..N for pool workers and above N for registered threads.
type Task interface {
	Execute(begin, end uint32, threadID uint32)
}

// TaskFunc adapts a function to Task
type TaskFunc func(begin, end uint32, threadID uint32)

func (f TaskFunc) Execute(begin, end uint32, threadID uint32) {
	f(begin, end, threadID)
}

// Handle refers to a scheduled task. The zero Handle is invalid.
type Handle struct {
	index      uint32
	generation uint32
}

// Valid reports whether the handle was returned by Schedule and not yet waited on
func (h Handle) Valid() bool {
	return h.generation != 0
}

// Config sizes the scheduler
type Config struct {
	Workers         int // Pool goroutines, runtime.NumCPU() when zero
	ReservedThreads int // Slots for RegisterThread
	Capacity        int // Arena size, DefaultCapacity when zero
}

type slot struct {
	generation uint32
	inUse      bool
	task       Task
	size       uint32
	pending    int // Chunks queued or running
}

type chunk struct {
	index      uint32
	begin, end uint32
}

// Scheduler is a fork-join pool. All methods are safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	workCond *sync.Cond // Signalled when chunks are queued
	doneCond *sync.Cond // Signalled when a task finishes its last chunk

	queue  []chunk
	slots  []slot
	free   []uint32
	closed bool

	numWorkers int
	reserved   int
	registered int
	wg         sync.WaitGroup
}

// New creates a scheduler and starts its workers
func New(cfg Config) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	s := &Scheduler{
		slots:      make([]slot, cfg.Capacity),
		free:       make([]uint32, 0, cfg.Capacity),
		numWorkers: cfg.Workers,
		reserved:   max(0, cfg.ReservedThreads),
	}
	s.workCond = sync.NewCond(&s.mu)
	s.doneCond = sync.NewCond(&s.mu)

	// Pop from the back so slot 0 is handed out first
	for i := cfg.Capacity - 1; i >= 0; i-- {
		s.free = append(s.free, uint32(i))
	}

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker(uint32(i + 1))
	}

	core.Logger().Debug("scheduler started",
		zap.Int("workers", s.numWorkers),
		zap.Int("reserved", s.reserved),
		zap.Int("capacity", cfg.Capacity))
	return s
}

// MaxThreadCount is the number of distinct thread IDs a task may observe
func (s *Scheduler) MaxThreadCount() int {
	return 1 + s.numWorkers + s.reserved
}

// Schedule partitions [0, size) across the workers and returns immediately
func (s *Scheduler) Schedule(size uint32, task Task) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Handle{}, ErrClosed
	}
	if len(s.free) == 0 {
		return Handle{}, fmt.Errorf("schedule %d items: %w", size, ErrPoolExhausted)
	}

	index := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]

	sl := &s.slots[index]
	sl.generation++
	if sl.generation == 0 {
		sl.generation = 1
	}
	sl.inUse = true
	sl.task = task
	sl.size = size
	s.enqueue(index)

	return Handle{index: index, generation: sl.generation}, nil
}

// ScheduleFunc is Schedule for a plain function
func (s *Scheduler) ScheduleFunc(size uint32, f func(begin, end, threadID uint32)) (Handle, error) {
	return s.Schedule(size, TaskFunc(f))
}

// Execute schedules the task and waits for it to complete
func (s *Scheduler) Execute(size uint32, task Task) error {
	h, err := s.Schedule(size, task)
	if err != nil {
		return err
	}
	s.Wait(&h)
	return nil
}

// ExecuteFunc is Execute for a plain function
func (s *Scheduler) ExecuteFunc(size uint32, f func(begin, end, threadID uint32)) error {
	return s.Execute(size, TaskFunc(f))
}

// ExecuteLinear runs the task on the calling goroutine as thread 0
func (s *Scheduler) ExecuteLinear(size uint32, task Task) {
	if size > 0 {
		task.Execute(0, size, 0)
	}
}

// Wait blocks until the task completes, frees its slot and invalidates h.
// Waiting on an invalid or already waited handle does nothing.
func (s *Scheduler) Wait(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.awaitIdle(*h)
	if sl == nil {
		*h = Handle{}
		return
	}
	sl.inUse = false
	sl.task = nil
	s.free = append(s.free, h.index)
	*h = Handle{}
}

// Restart waits for the current run of the task and runs it again over the
// same range. The handle stays valid.
func (s *Scheduler) Restart(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(h) == nil {
		return ErrInvalidHandle
	}
	if s.closed {
		return ErrClosed
	}
	if s.awaitIdle(h) == nil {
		return ErrInvalidHandle
	}
	s.enqueue(h.index)
	return nil
}

// Completed reports without blocking whether the task has finished. Stale
// handles report true.
func (s *Scheduler) Completed(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.lookup(h)
	return sl == nil || sl.pending == 0
}

// Close stops the workers after the queued chunks have run
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.workCond.Broadcast()
	s.mu.Unlock()

	s.wg.Wait()
	core.Logger().Debug("scheduler stopped")
}

func (s *Scheduler) lookup(h Handle) *slot {
	if !h.Valid() || int(h.index) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[h.index]
	if !sl.inUse || sl.generation != h.generation {
		return nil
	}
	return sl
}

// awaitIdle blocks until the slot behind h has no pending chunks. The slot is
// looked up again after every wakeup since another Wait may have freed it.
// Called with mu held.
func (s *Scheduler) awaitIdle(h Handle) *slot {
	for {
		sl := s.lookup(h)
		if sl == nil || sl.pending == 0 {
			return sl
		}
		s.doneCond.Wait()
	}
}

// enqueue splits the slot's range into chunks. Called with mu held.
func (s *Scheduler) enqueue(index uint32) {
	sl := &s.slots[index]
	if sl.size == 0 {
		sl.pending = 0
		s.doneCond.Broadcast()
		return
	}

	// Several chunks per worker keeps the pool busy when items are uneven
	step := max(1, sl.size/uint32(4*s.numWorkers))
	for begin := uint32(0); begin < sl.size; begin += step {
		end := min(sl.size, begin+step)
		s.queue = append(s.queue, chunk{index: index, begin: begin, end: end})
		sl.pending++
	}
	s.workCond.Broadcast()
}

// next blocks until a chunk is available. It returns false once the
// scheduler is closed and the queue is drained.
func (s *Scheduler) next() (chunk, Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.queue) == 0 {
		if s.closed {
			return chunk{}, nil, false
		}
		s.workCond.Wait()
	}
	return s.pop()
}

// tryNext is next without blocking
func (s *Scheduler) tryNext() (chunk, Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return chunk{}, nil, false
	}
	return s.pop()
}

func (s *Scheduler) pop() (chunk, Task, bool) {
	c := s.queue[0]
	s.queue = s.queue[1:]
	return c, s.slots[c.index].task, true
}

func (s *Scheduler) run(c chunk, task Task, threadID uint32) {
	task.Execute(c.begin, c.end, threadID)

	s.mu.Lock()
	sl := &s.slots[c.index]
	sl.pending--
	if sl.pending == 0 {
		s.doneCond.Broadcast()
	}
	s.mu.Unlock()
}

func (s *Scheduler) worker(id uint32) {
	defer s.wg.Done()

	for {
		c, task, ok := s.next()
		if !ok {
			return
		}
		s.run(c, task, id)
	}
}
