// Package loop provides a single-threaded event loop. Every state mutation of
// the coordinator, the location provider and the marker store happens inside
// a function posted here; asynchronous work runs elsewhere and posts its
// continuation back.
package loop

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrStopped    = errors.New("event loop stopped")
	ErrNotRunning = errors.New("event loop is not running")
)

var log = logrus.StandardLogger()

// Loop runs posted functions one at a time, in posting order.
type Loop struct {
	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	stopChan chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	running  bool
	stopped  bool
}

func New() *Loop {
	return &Loop{
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the loop in its own goroutine until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	if l.running {
		l.mu.Unlock()
		return errors.New("event loop is already running")
	}
	l.running = true
	l.mu.Unlock()

	log.Debug("starting event loop")

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(l.done)
		l.run(ctx)
	}()
	return nil
}

// Stop ends the loop after the function currently executing returns.
// Functions still queued are dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	wasRunning := l.running
	l.running = false
	l.mu.Unlock()

	log.Debug("stopping event loop")
	close(l.stopChan)
	if wasRunning {
		l.wg.Wait()
	}
}

// IsRunning returns whether the loop is currently processing functions
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn for execution on the loop. It never blocks, so it is safe to
// call from inside a running function. It returns false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do posts fn and waits until it has run. It must not be called from the loop
// goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if !l.IsRunning() {
		return ErrNotRunning
	}
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(ctx context.Context) {
	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			select {
			case <-ctx.Done():
				l.markStopped()
				return
			case <-l.stopChan:
				return
			default:
			}
			l.execute(fn)
		}

		select {
		case <-ctx.Done():
			log.Debug("context cancelled, stopping event loop")
			l.markStopped()
			return
		case <-l.stopChan:
			return
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("event loop function panicked: %v", r)
		}
	}()
	fn()
}

func (l *Loop) markStopped() {
	l.mu.Lock()
	l.running = false
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()
}
