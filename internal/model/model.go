// Package model provides a reactive single-slot cache over a swappable data source.
//
// A Model wraps a getter function, keeps the outcome of the most recently completed
// invocation (a value or an error, never both) and notifies every registered
// listener after each completed refresh. Producer failures are data: they are
// cached and delivered to listeners, never returned from Refresh.
package model

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/bassista/circum/internal/logger"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotLoaded is the cached error until the first getter invocation completes.
	ErrNotLoaded = errors.New("model: getter has not completed yet")
	// ErrUnknown replaces panic values that are not errors.
	ErrUnknown = errors.New("unknown error occurred")
	// ErrNoGetter is cached when the model has no getter to invoke.
	ErrNoGetter = errors.New("model: getter is nil")
)

// Getter produces the model data. It may block; it always runs on its own goroutine.
type Getter[T any] func(ctx context.Context) (T, error)

// Listener receives the outcome of every completed refresh.
// Exactly one of value and err is meaningful: err != nil marks a producer failure.
type Listener[T any] func(value T, err error)

// ListenerID identifies a registered listener. IDs start at 1 and only grow.
type ListenerID uint64

// Static returns a getter that always yields v.
func Static[T any](v T) Getter[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}

type listenerEntry[T any] struct {
	id ListenerID
	fn Listener[T]
}

// Model is a reactive container around a Getter.
//
// Several refreshes may be in flight at once. Their completions are serialized:
// caching and fan-out of one refresh never interleave with another. By default the
// last refresh to complete wins; WithStaleDiscard switches to last-started wins.
// Listeners run on the completing goroutine and must not wait on a refresh of the
// same model.
type Model[T any] struct {
	ctx  context.Context
	opts options
	log  *logrus.Entry

	mu        sync.RWMutex
	getter    Getter[T]
	value     T
	err       error
	listeners []listenerEntry[T]
	loading   *Pending
	issued    uint64 // token of the most recently started refresh
	applied   uint64 // token of the newest refresh written to the cache

	nextID atomic.Uint64
	fanout sync.Mutex
}

// New creates a model, registers initial when it is non-nil and starts the first
// refresh. It returns as soon as the refresh has been started; use Loading to wait
// for the outcome. ctx is handed to every getter invocation.
func New[T any](ctx context.Context, getter Getter[T], initial Listener[T], opts ...Option) *Model[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.WithComponent("model")
	if o.name != "" {
		log = log.WithField("model", o.name)
	}

	m := &Model[T]{
		ctx:    ctx,
		opts:   o,
		log:    log,
		getter: getter,
		err:    ErrNotLoaded,
	}
	if initial != nil {
		m.AddListener(initial)
	}
	m.Refresh()
	return m
}

// Refresh invokes the getter and notifies all listeners once it completes.
// The returned Pending reports when caching and fan-out are done.
func (m *Model[T]) Refresh() *Pending {
	m.mu.Lock()
	getter := m.getter
	m.issued++
	token := m.issued
	p := newPending()
	m.loading = p
	m.mu.Unlock()

	m.log.Tracef("refresh %d started", token)
	go m.run(getter, token, p)
	return p
}

// SetGetter replaces the getter and triggers a refresh. Refreshes already running
// with the previous getter are not cancelled and still notify listeners.
func (m *Model[T]) SetGetter(getter Getter[T]) *Pending {
	m.mu.Lock()
	m.getter = getter
	m.mu.Unlock()
	return m.Refresh()
}

// Loading returns the handle of the most recently started refresh.
func (m *Model[T]) Loading() *Pending {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Data returns the cached outcome without invoking the getter.
func (m *Model[T]) Data() (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, m.err
}

// AddListener registers fn and returns its id. The listener is not called with the
// current cached value, only with future refresh outcomes. A nil fn is ignored and
// yields id 0.
func (m *Model[T]) AddListener(fn Listener[T]) ListenerID {
	if fn == nil {
		return 0
	}
	id := ListenerID(m.nextID.Add(1))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listenerEntry[T]{id: id, fn: fn})
	return id
}

// RemoveListener unregisters the listener with the given id, if present.
func (m *Model[T]) RemoveListener(id ListenerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = slices.DeleteFunc(m.listeners, func(e listenerEntry[T]) bool {
		return e.id == id
	})
}

// ListenerCount returns the number of registered listeners.
func (m *Model[T]) ListenerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listeners)
}

func (m *Model[T]) run(getter Getter[T], token uint64, p *Pending) {
	value, err := invoke(m.ctx, getter)

	m.fanout.Lock()
	defer m.fanout.Unlock()
	defer close(p.done)

	m.mu.Lock()
	if m.opts.discardStale && token < m.applied {
		m.mu.Unlock()
		m.log.Debugf("refresh %d superseded by %d, result dropped", token, m.applied)
		return
	}
	m.value, m.err = value, err
	if token > m.applied {
		m.applied = token
	}
	snapshot := slices.Clone(m.listeners)
	m.mu.Unlock()

	if err != nil {
		m.log.Debugf("refresh %d completed with error: %v", token, err)
	} else {
		m.log.Tracef("refresh %d completed", token)
	}
	p.err = m.notify(snapshot, value, err)
}

func (m *Model[T]) notify(entries []listenerEntry[T], value T, err error) error {
	if m.opts.isolate {
		var errs []error
		for _, e := range entries {
			if lerr := callListener(e, value, err); lerr != nil {
				m.log.Warnf("%v", lerr)
				errs = append(errs, lerr)
			}
		}
		return joinListenerErrors(errs)
	}

	for _, e := range entries {
		if lerr := callListener(e, value, err); lerr != nil {
			m.log.Errorf("%v, remaining listeners skipped", lerr)
			return lerr
		}
	}
	return nil
}

// invoke runs the getter and normalizes every failure into an error.
func invoke[T any](ctx context.Context, getter Getter[T]) (value T, err error) {
	var zero T
	if getter == nil {
		return zero, ErrNoGetter
	}

	defer func() {
		if r := recover(); r != nil {
			value = zero
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = ErrUnknown
			}
		}
	}()

	value, err = getter(ctx)
	if err != nil {
		value = zero
	}
	return value, err
}
