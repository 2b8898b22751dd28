// Package coop runs tasks cooperatively: many goroutines, one turn. A task
// only gives up the turn at Yield, Sleep or when it returns, so tasks never
// interleave inside a blocking call.
package coop

import (
	"context"
	"sync"
	"time"

	"github.com/colonyops/walkthrough/internal/core/logging"
	"github.com/rs/zerolog"
)

// Scheduler hands a single turn to its tasks in FIFO order. Tasks are queued
// by Go in call order and do not start until the scheduler is started by
// Start, Wait or a Future's Await.
type Scheduler struct {
	log zerolog.Logger

	mu      sync.Mutex
	queue   []*Task
	running *Task
	started bool

	wg sync.WaitGroup
}

// NewScheduler creates an idle scheduler.
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Task is the handle a running task uses to give up its turn.
type Task struct {
	name string
	s    *Scheduler
	wake chan struct{}
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Future is the eventual result of a task.
type Future[T any] struct {
	s     *Scheduler
	done  chan struct{}
	value T
	err   error
}

// Done is closed when the task has returned.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await starts the scheduler if needed and blocks until the task returns or
// ctx is cancelled.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	f.s.Start()

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Spawn queues fn as a new task and returns its future. ctx is passed to fn
// with the task name attached as the log step.
func Spawn[T any](s *Scheduler, ctx context.Context, name string, fn func(ctx context.Context, t *Task) (T, error)) *Future[T] {
	t := &Task{name: name, s: s, wake: make(chan struct{}, 1)}
	f := &Future[T]{s: s, done: make(chan struct{})}
	ctx = logging.WithStep(ctx, name)

	s.wg.Add(1)
	s.mu.Lock()
	s.enqueueLocked(t)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		<-t.wake
		s.log.Debug().Ctx(ctx).Msg("task started")

		f.value, f.err = fn(ctx, t)
		close(f.done)

		s.log.Debug().Ctx(ctx).Err(f.err).Msg("task finished")
		s.release()
	}()

	return f
}

// Go queues fn as a new task that only reports an error.
func (s *Scheduler) Go(ctx context.Context, name string, fn func(ctx context.Context, t *Task) error) *Future[struct{}] {
	return Spawn(s, ctx, name, func(ctx context.Context, t *Task) (struct{}, error) {
		return struct{}{}, fn(ctx, t)
	})
}

// Start hands the turn to the first queued task. It is a no-op once started.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	if s.running == nil {
		s.nextLocked()
	}
}

// Wait starts the scheduler and blocks until every task has returned.
func (s *Scheduler) Wait() {
	s.Start()
	s.wg.Wait()
}

// enqueueLocked queues t, giving it the turn at once when the scheduler is
// idle.
func (s *Scheduler) enqueueLocked(t *Task) {
	s.queue = append(s.queue, t)
	if s.started && s.running == nil {
		s.nextLocked()
	}
}

// nextLocked passes the turn to the head of the queue, if any.
func (s *Scheduler) nextLocked() {
	s.running = nil
	if len(s.queue) == 0 {
		return
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.running = next
	next.wake <- struct{}{}
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.nextLocked()
	s.mu.Unlock()
}

// Yield moves the task to the back of the queue and waits for its next turn.
// With no other task waiting it returns at once.
func (t *Task) Yield(ctx context.Context) error {
	s := t.s

	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return ctx.Err()
	}
	s.queue = append(s.queue, t)
	s.nextLocked()
	s.mu.Unlock()

	<-t.wake
	return ctx.Err()
}

// Sleep gives up the turn for d, then queues for the next one. Other tasks
// run while this one sleeps. Cancelling ctx cuts the sleep short.
func (t *Task) Sleep(ctx context.Context, d time.Duration) error {
	s := t.s
	s.release()

	timer := time.NewTimer(d)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}

	s.mu.Lock()
	s.enqueueLocked(t)
	s.mu.Unlock()

	<-t.wake
	return ctx.Err()
}
