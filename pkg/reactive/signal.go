package reactive

import (
	"reflect"
	"sync"
	"sync/atomic"
)

var idCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

type subscriber struct {
	id uint64
	fn func()
}

// signalBase provides type-erased subscriber management.
type signalBase struct {
	subs  []subscriber
	subMu sync.RWMutex
}

func (s *signalBase) subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	id := nextID()

	s.subMu.Lock()
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *signalBase) unsubscribe(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, existing := range s.subs {
		if existing.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notifySubscribers runs subscribers without holding the lock, in
// subscription order.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *signalBase) subscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs)
}

// Signal is a reactive value container.
type Signal[T any] struct {
	base signalBase
	id   uint64

	value T
	mu    sync.RWMutex

	// equal decides whether a Set changed the value. Nil means defaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and notifies subscribers if the value changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Update atomically reads and updates the signal's value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	next := fn(old)
	changed := !s.equals(old, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Subscribe registers fn to run after every change and returns a function
// that removes the subscription. The returned function is idempotent.
func (s *Signal[T]) Subscribe(fn func()) (unsubscribe func()) {
	return s.base.subscribe(fn)
}

// WithEquals returns the signal configured with a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common comparable types and reflect.DeepEqual
// for everything else. Pointers compare by identity.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	case float64:
		return av == any(b).(float64)
	}

	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if va.IsValid() && vb.IsValid() && va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	return reflect.DeepEqual(a, b)
}

// Watch subscribes fn to every signal in sources and returns one function
// that removes all of the subscriptions.
func Watch(fn func(), sources ...interface{ Subscribe(func()) func() }) (unsubscribe func()) {
	stops := make([]func(), 0, len(sources))
	for _, src := range sources {
		stops = append(stops, src.Subscribe(fn))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}
