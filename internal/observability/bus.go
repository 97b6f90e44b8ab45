package observability

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Observer reacts to a task lifecycle event. A returned error is logged by
// the Bus and otherwise ignored.
type Observer interface {
	Receive(task *models.Task, kind models.EventKind) error
}

// ObserverFunc adapts an ordinary function to the Observer interface.
type ObserverFunc func(task *models.Task, kind models.EventKind) error

// Receive calls f(task, kind).
func (f ObserverFunc) Receive(task *models.Task, kind models.EventKind) error {
	return f(task, kind)
}

// Bus is a registry of observers with fault-isolated synchronous dispatch.
// Observers run in registration order and each receives its own copy of the
// task. Errors and panics raised by an observer are logged and never reach
// the publisher or the observers after it.
type Bus struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *zap.Logger
}

// NewBus creates an empty bus logging delivery failures to logger. A nil
// logger discards them.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// AddObserver registers o at the end of the dispatch order.
func (b *Bus) AddObserver(o Observer) {
	if o == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// RemoveObserver unregisters the first registration of o and reports
// whether one was found.
func (b *Bus) RemoveObserver(o Observer) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.observers {
		if sameObserver(existing, o) {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return true
		}
	}
	return false
}

// CountObservers returns the number of registered observers.
func (b *Bus) CountObservers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

// Publish delivers the event to every observer registered when the call
// starts. It never fails.
func (b *Bus) Publish(task *models.Task, kind models.EventKind) {
	if task == nil {
		return
	}
	b.mu.RLock()
	snapshot := make([]Observer, len(b.observers))
	copy(snapshot, b.observers)
	b.mu.RUnlock()

	for i, o := range snapshot {
		if err := deliver(o, task.Clone(), kind); err != nil {
			b.logger.Warn("observer failed",
				zap.String("task_id", task.ID),
				zap.String("kind", string(kind)),
				zap.Int("observer", i),
				zap.Error(err),
			)
		}
	}
}

func deliver(o Observer, task *models.Task, kind models.EventKind) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panicked: %v", r)
		}
	}()
	return o.Receive(task, kind)
}

// sameObserver compares registrations. Function values are not comparable
// with ==, so ObserverFuncs match when they point at the same code. Values
// whose dynamic contents cannot be compared never match.
func sameObserver(a, b Observer) (same bool) {
	fa, aIsFunc := a.(ObserverFunc)
	fb, bIsFunc := b.(ObserverFunc)
	if aIsFunc || bIsFunc {
		return aIsFunc && bIsFunc && reflect.ValueOf(fa).Pointer() == reflect.ValueOf(fb).Pointer()
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
