// File: internal/events/bus.go
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/appleaww/messenger/internal/services"
)

// Publisher is the fire-and-forget channel the core emits metric events to.
// Implementations must never block the caller beyond a bounded wait and must
// never surface a publish failure into the caller's result.
type Publisher interface {
	Publish(topic, key string, event interface{})
}

// Sink receives the records the Producer has accepted.
type Sink interface {
	Send(topic, key string, event interface{}) error
}

type record struct {
	topic string
	key   string
	event interface{}
}

// Producer queues events for asynchronous delivery to a Sink. When the queue
// stays full past the enqueue timeout the event is dropped and logged.
type Producer struct {
	ch      chan record
	timeout time.Duration
	sink    Sink
	logger  services.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

func NewProducer(sink Sink, buffer int, timeout time.Duration, logger services.Logger) *Producer {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Producer{
		ch:      make(chan record, buffer),
		timeout: timeout,
		sink:    sink,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues the event, waiting at most the configured timeout. A
// publish racing Close is dropped and logged; hijacked connections can still
// drive actions after the HTTP server has shut down, so this path must stay
// panic-free.
func (p *Producer) Publish(topic, key string, event interface{}) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("event dropped, producer closed", "topic", topic, "key", key)
		return
	}

	select {
	case p.ch <- record{topic: topic, key: key, event: event}:
	case <-time.After(p.timeout):
		p.logger.Error("event dropped, queue full", "topic", topic, "key", key)
	}
}

func (p *Producer) run() {
	defer close(p.done)
	for rec := range p.ch {
		if err := p.sink.Send(rec.topic, rec.key, rec.event); err != nil {
			p.logger.Error("failed to deliver event", "topic", rec.topic, "key", rec.key, "error", err)
			continue
		}
		p.logger.Debug("event delivered", "topic", rec.topic, "key", rec.key)
	}
}

// Close drains the queue and stops the delivery goroutine. Publishes that
// arrive afterwards are dropped, never panicked on.
func (p *Producer) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.ch)
		<-p.done
	})
}

// LogSink serializes events into the structured log. It stands in for an
// external broker in single-process deployments.
type LogSink struct {
	logger services.Logger
}

func NewLogSink(logger services.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(topic, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.logger.Info("event published", "topic", topic, "key", key, "event", string(payload))
	return nil
}

// Recorder is a Publisher that captures events for assertions in tests.
type Recorder struct {
	mu      sync.Mutex
	records []Recorded
}

type Recorded struct {
	Topic string
	Key   string
	Event interface{}
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(topic, key string, event interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Recorded{Topic: topic, Key: key, Event: event})
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.records))
	copy(out, r.records)
	return out
}

// ByTopic returns the published events for one topic.
func (r *Recorder) ByTopic(topic string) []Recorded {
	var out []Recorded
	for _, rec := range r.Events() {
		if rec.Topic == topic {
			out = append(out, rec)
		}
	}
	return out
}
