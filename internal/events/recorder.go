package events

import (
	"fmt"
	"reflect"
	"sync"
)

// Recorder is an in-memory EventBus that keeps every published event and
// delivers it synchronously to subscribers. It is meant for tests.
type Recorder struct {
	mu            sync.RWMutex
	subscriptions map[string][]interface{}
	published     map[string][]interface{}
	closed        bool
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{
		subscriptions: make(map[string][]interface{}),
		published:     make(map[string][]interface{}),
	}
}

func (r *Recorder) Publish(topic string, data interface{}) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("event bus is closed")
	}
	r.published[topic] = append(r.published[topic], data)
	handlers := append([]interface{}(nil), r.subscriptions[topic]...)
	r.mu.Unlock()

	for _, handler := range handlers {
		fn := reflect.ValueOf(handler)
		if fn.Type().NumIn() != 1 {
			continue
		}
		in := fn.Type().In(0)
		arg := reflect.ValueOf(data)
		if !arg.IsValid() {
			// nil arrives as the parameter's zero value, as with EventBus
			arg = reflect.Zero(in)
		} else if !arg.Type().AssignableTo(in) {
			continue
		}
		fn.Call([]reflect.Value{arg})
	}
	return nil
}

func (r *Recorder) Subscribe(topic string, handler interface{}) error {
	if reflect.TypeOf(handler).Kind() != reflect.Func {
		return fmt.Errorf("%s is not of type reflect.Func", reflect.TypeOf(handler).Kind())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions[topic] = append(r.subscriptions[topic], handler)
	return nil
}

// SubscribeAsync delivers synchronously as well so tests stay deterministic
func (r *Recorder) SubscribeAsync(topic string, handler interface{}) error {
	return r.Subscribe(topic, handler)
}

func (r *Recorder) Unsubscribe(topic string, handler interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := reflect.ValueOf(handler).Pointer()
	handlers := r.subscriptions[topic]
	for i, h := range handlers {
		if reflect.ValueOf(h).Pointer() == target {
			r.subscriptions[topic] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("topic %s doesn't exist", topic)
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Published returns the events published on topic in order
func (r *Recorder) Published(topic string) []interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]interface{}(nil), r.published[topic]...)
}

// Count returns how many events were published on topic
func (r *Recorder) Count(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.published[topic])
}
