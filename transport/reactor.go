package transport

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Reactor is the single event loop owning the socket operations of one bridge.
//
// Blocking socket calls are issued with Async: the call runs on a helper
// goroutine and its completion is posted back onto the loop goroutine, so
// every continuation (publishing, re-arming, registry and peer updates) runs
// serially on one goroutine. Sockets are registered with the reactor so that
// Stop can unblock pending operations by closing them.
type Reactor struct {
	ctx    context.Context
	cancel context.CancelFunc

	tasks chan task
	done  chan struct{} // closed when the loop goroutine exits

	mu      sync.Mutex
	stopped bool
	closers map[io.Closer]struct{}
	ops     sync.WaitGroup

	stopOnce sync.Once
	finished chan struct{} // closed when Stop has fully completed

	log *logrus.Entry
}

// task is one posted completion. drop, if set, releases the completion's
// resources when the reactor stops before run is called.
type task struct {
	run  func()
	drop func()
}

// NewReactor starts the loop goroutine and returns the running reactor.
func NewReactor(log *logrus.Entry) *Reactor {
	if log == nil {
		log = logrus.WithField("component", "Reactor")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Reactor{
		ctx:      ctx,
		cancel:   cancel,
		tasks:    make(chan task, 16),
		done:     make(chan struct{}),
		closers:  make(map[io.Closer]struct{}),
		finished: make(chan struct{}),
		log:      log,
	}

	go r.run()

	return r
}

// run executes posted completions until the reactor is stopped.
func (r *Reactor) run() {
	defer close(r.done)

	for {
		select {
		case <-r.ctx.Done():
			return
		case t := <-r.tasks:
			t.run()
		}
	}
}

// Post schedules fn on the loop goroutine. It returns false if the reactor
// has been stopped, in which case fn is dropped. Post must not be called
// from the loop goroutine itself.
func (r *Reactor) Post(fn func()) bool {
	return r.post(task{run: fn})
}

func (r *Reactor) post(t task) bool {
	if r.ctx.Err() != nil {
		return false
	}

	select {
	case r.tasks <- t:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Async runs op on a helper goroutine and posts complete(result, err) to the
// loop goroutine when op returns. It returns false without running op if the
// reactor has been stopped. When the reactor stops before complete runs, a
// result implementing io.Closer is closed instead.
func Async[T any](r *Reactor, op func() (T, error), complete func(T, error)) bool {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false
	}
	r.ops.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.ops.Done()
		result, err := op()
		release := func() { closeResult(result) }
		if !r.post(task{run: func() { complete(result, err) }, drop: release}) {
			release()
		}
	}()

	return true
}

// closeResult closes result if it holds an io.Closer.
func closeResult(result any) {
	if c, ok := result.(io.Closer); ok {
		c.Close()
	}
}

// Register hands c to the reactor so Stop closes it. If the reactor is
// already stopped, c is closed immediately and Register returns false.
func (r *Reactor) Register(c io.Closer) bool {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		c.Close()
		return false
	}
	r.closers[c] = struct{}{}
	r.mu.Unlock()
	return true
}

// Unregister forgets c without closing it.
func (r *Reactor) Unregister(c io.Closer) {
	r.mu.Lock()
	delete(r.closers, c)
	r.mu.Unlock()
}

// Context is cancelled when Stop begins.
func (r *Reactor) Context() context.Context {
	return r.ctx
}

// Stopping reports whether Stop has been called.
func (r *Reactor) Stopping() bool {
	return r.ctx.Err() != nil
}

// Done is closed once Stop has fully completed.
func (r *Reactor) Done() <-chan struct{} {
	return r.finished
}

// Stop cancels the loop, closes every registered socket and waits until the
// loop goroutine and all in-flight operations have exited. It is idempotent
// and every caller blocks until the first call completes. Stop must not be
// called from the loop goroutine.
func (r *Reactor) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		closers := r.closers
		r.closers = make(map[io.Closer]struct{})
		r.mu.Unlock()

		r.cancel()

		for c := range closers {
			if err := c.Close(); err != nil {
				r.log.WithField("error", err.Error()).Debug("Error closing socket during stop")
			}
		}

		r.ops.Wait()
		<-r.done
		r.drainTasks()
		close(r.finished)

		r.log.Debug("Reactor stopped")
	})
}

// drainTasks releases completions queued but never run. Only called once the
// loop and every helper goroutine have exited.
func (r *Reactor) drainTasks() {
	for {
		select {
		case t := <-r.tasks:
			if t.drop != nil {
				t.drop()
			}
		default:
			return
		}
	}
}
