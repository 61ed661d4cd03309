// File: internal/events/bus_test.go
package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appleaww/messenger/internal/services"
)

type captureSink struct {
	mu   sync.Mutex
	sent []Recorded
}

func (s *captureSink) Send(topic, key string, event interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Recorded{Topic: topic, Key: key, Event: event})
	return nil
}

func (s *captureSink) all() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.sent))
	copy(out, s.sent)
	return out
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Send(topic, key string, event interface{}) error {
	<-s.release
	return nil
}

func TestProducer_DeliversToSink(t *testing.T) {
	sink := &captureSink{}
	p := NewProducer(sink, 8, time.Second, &services.NoOpLogger{})

	p.Publish(TopicBusinessMetrics, "1", BusinessEvent{Type: EventUserActive, UserID: "1"})
	p.Publish(TopicTechnicalMetrics, "1", TechnicalEvent{Type: EventMessageSent, UserID: "1"})
	p.Close()

	sent := sink.all()
	require.Len(t, sent, 2)
	assert.Equal(t, TopicBusinessMetrics, sent[0].Topic)
	assert.Equal(t, TopicTechnicalMetrics, sent[1].Topic)
}

func TestProducer_CloseDrainsQueue(t *testing.T) {
	sink := &captureSink{}
	p := NewProducer(sink, 64, time.Second, &services.NoOpLogger{})

	for i := 0; i < 50; i++ {
		p.Publish(TopicBusinessMetrics, "1", BusinessEvent{Type: EventUserActive, UserID: "1"})
	}
	p.Close()

	assert.Len(t, sink.all(), 50, "Close waits for every accepted event")
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	p := NewProducer(&captureSink{}, 8, time.Second, &services.NoOpLogger{})
	p.Close()
	assert.NotPanics(t, p.Close)
}

func TestProducer_DropsWhenQueueStaysFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	p := NewProducer(sink, 1, 10*time.Millisecond, &services.NoOpLogger{})

	// One record is in flight in the delivery goroutine and one fills the
	// buffer; the next publish cannot be accepted before the timeout.
	p.Publish(TopicBusinessMetrics, "1", BusinessEvent{})
	p.Publish(TopicBusinessMetrics, "2", BusinessEvent{})

	done := make(chan struct{})
	go func() {
		p.Publish(TopicBusinessMetrics, "3", BusinessEvent{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish did not return after the enqueue timeout")
	}

	close(sink.release)
	p.Close()
}

func TestProducer_PublishAfterCloseIsDropped(t *testing.T) {
	sink := &captureSink{}
	p := NewProducer(sink, 8, time.Second, &services.NoOpLogger{})
	p.Close()

	assert.NotPanics(t, func() {
		p.Publish(TopicBusinessMetrics, "1", BusinessEvent{Type: EventUserActive, UserID: "1"})
	})
	assert.Empty(t, sink.all())
}

func TestProducer_PublishRacingCloseNeverPanics(t *testing.T) {
	sink := &captureSink{}
	p := NewProducer(sink, 8, 10*time.Millisecond, &services.NoOpLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Publish(TopicTechnicalMetrics, "1", TechnicalEvent{Type: EventMessageSent})
			}
		}()
	}
	p.Close()
	assert.NotPanics(t, wg.Wait)
}

func TestRecorder_ByTopic(t *testing.T) {
	r := NewRecorder()
	r.Publish(TopicBusinessMetrics, "1", BusinessEvent{Type: EventUserActive})
	r.Publish(TopicTechnicalMetrics, "1", TechnicalEvent{Type: EventMessageSent})
	r.Publish(TopicBusinessMetrics, "2", BusinessEvent{Type: EventSessionEnd})

	assert.Len(t, r.Events(), 3)
	assert.Len(t, r.ByTopic(TopicBusinessMetrics), 2)
	assert.Len(t, r.ByTopic(TopicTechnicalMetrics), 1)
	assert.Empty(t, r.ByTopic("nope"))
}
