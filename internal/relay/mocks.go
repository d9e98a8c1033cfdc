package relay

import (
	"context"
	"fmt"
	"sync"

	kafka "github.com/segmentio/kafka-go"

	"go-amqpheader/pkg/models"
)

// MockProducer is a mock implementation of ProducerClient for testing
type MockProducer struct {
	mu                sync.RWMutex
	PublishedMessages []PublishedMessage
	PublishFunc       func(ctx context.Context, topic string, msg *models.Message) error
	CloseFunc         func() error
	FailCount         int
	failureCounter    int
}

// PublishedMessage is a snapshot of a message at the time it was published.
type PublishedMessage struct {
	Topic      string
	Key        string
	Value      []byte
	Header     *models.Header
	Properties map[string]string
}

func NewMockProducer() *MockProducer {
	return &MockProducer{
		PublishedMessages: make([]PublishedMessage, 0),
	}
}

func (m *MockProducer) Publish(ctx context.Context, topic string, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}

	if m.FailCount > 0 {
		m.failureCounter++
		if m.failureCounter <= m.FailCount {
			return fmt.Errorf("simulated publish failure %d", m.failureCounter)
		}
	}

	props := make(map[string]string, len(msg.Properties))
	for k, v := range msg.Properties {
		props[k] = v
	}
	var header *models.Header
	if msg.Header != nil {
		header = msg.Header.Clone()
	}
	m.PublishedMessages = append(m.PublishedMessages, PublishedMessage{
		Topic:      topic,
		Key:        msg.Key,
		Value:      msg.Value,
		Header:     header,
		Properties: props,
	})
	return nil
}

func (m *MockProducer) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockProducer) GetPublishedMessages() []PublishedMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := make([]PublishedMessage, len(m.PublishedMessages))
	copy(messages, m.PublishedMessages)
	return messages
}

func (m *MockProducer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedMessages = make([]PublishedMessage, 0)
	m.failureCounter = 0
}

// MockDedupeStore is a mock implementation of DedupeStore for testing
type MockDedupeStore struct {
	mu          sync.RWMutex
	ExistsFunc  func(messageID string) bool
	AddFunc     func(messageID string) error
	existingIDs map[string]bool
}

func NewMockDedupeStore() *MockDedupeStore {
	return &MockDedupeStore{
		existingIDs: make(map[string]bool),
	}
}

func (m *MockDedupeStore) Exists(messageID string) bool {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(messageID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existingIDs[messageID]
}

func (m *MockDedupeStore) Add(messageID string) error {
	if m.AddFunc != nil {
		return m.AddFunc(messageID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.existingIDs[messageID] = true
	return nil
}

func (m *MockDedupeStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existingIDs = make(map[string]bool)
}

// MockReader serves queued records and records commits. Once the queue is
// empty FetchMessage blocks until the context ends.
type MockReader struct {
	mu        sync.Mutex
	records   chan kafka.Message
	committed []kafka.Message
	CommitErr error
	closed    bool
}

func NewMockReader(records ...kafka.Message) *MockReader {
	r := &MockReader{records: make(chan kafka.Message, len(records))}
	for _, rec := range records {
		r.records <- rec
	}
	return r
}

func (r *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case rec := <-r.records:
		return rec, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *MockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CommitErr != nil {
		return r.CommitErr
	}
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *MockReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *MockReader) Committed() []kafka.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]kafka.Message, len(r.committed))
	copy(out, r.committed)
	return out
}

// MockWriter records written messages. The first FailCount writes fail.
type MockWriter struct {
	mu        sync.Mutex
	Written   []kafka.Message
	FailCount int
	calls     int
	closed    bool
}

func (w *MockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.calls <= w.FailCount {
		return fmt.Errorf("simulated write failure %d", w.calls)
	}
	w.Written = append(w.Written, msgs...)
	return nil
}

func (w *MockWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *MockWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}
