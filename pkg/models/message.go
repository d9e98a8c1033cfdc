package models

import "time"

// Message represents a message in the system
type Message struct {
	ID         string            `json:"id"`
	Key        string            `json:"key"`
	Value      []byte            `json:"value"`
	Header     *Header           `json:"header,omitempty"`
	Properties map[string]string `json:"properties"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Property names carried next to the encoded header
const (
	PropertyMessageID     = "message-id"
	PropertyAMQPHeader    = "amqp-header"
	PropertyRawAMQPHeader = "amqp-header-raw"
	PropertyOriginalTopic = "original-topic"
	PropertyFailureReason = "failure-reason"
	PropertyProcessedAt   = "processed-at"
)

// EnsureHeader returns m.Header, creating a default one when absent.
func (m *Message) EnsureHeader() *Header {
	if m.Header == nil {
		m.Header = NewHeader()
	}
	return m.Header
}
