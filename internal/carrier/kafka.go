// Package carrier moves message headers on and off broker records.
package carrier

import (
	"encoding/hex"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	"go-amqpheader/pkg/models"
)

// HeaderKey is the record header under which the encoded AMQP header
// section travels.
const HeaderKey = models.PropertyAMQPHeader

// Inject encodes h and stores it under HeaderKey, replacing any copy already
// present. A nil header removes the entry.
func Inject(headers []kafka.Header, h *models.Header, p models.EncodePolicy) ([]kafka.Header, error) {
	out := headers[:0:0]
	for _, kh := range headers {
		if kh.Key != HeaderKey {
			out = append(out, kh)
		}
	}
	if h == nil {
		return out, nil
	}
	b, err := models.MarshalHeader(h, p)
	if err != nil {
		return nil, fmt.Errorf("encode amqp header: %w", err)
	}
	return append(out, kafka.Header{Key: HeaderKey, Value: b}), nil
}

// Extract decodes the header stored under HeaderKey. found is false when
// the record carries none.
func Extract(headers []kafka.Header) (h *models.Header, found bool, err error) {
	for _, kh := range headers {
		if kh.Key != HeaderKey {
			continue
		}
		h, err = models.UnmarshalHeader(kh.Value)
		if err != nil {
			return nil, true, fmt.Errorf("decode amqp header: %w", err)
		}
		return h, true, nil
	}
	return nil, false, nil
}

// ToKafka builds a record for topic from msg. Properties become record
// headers and msg.Header is encoded under HeaderKey.
func ToKafka(topic string, msg *models.Message, p models.EncodePolicy) (kafka.Message, error) {
	km := kafka.Message{
		Topic: topic,
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	if len(msg.Properties) > 0 || msg.ID != "" {
		km.Headers = make([]kafka.Header, 0, len(msg.Properties)+2)
	}
	if msg.ID != "" {
		km.Headers = append(km.Headers, kafka.Header{Key: models.PropertyMessageID, Value: []byte(msg.ID)})
	}
	for k, v := range msg.Properties {
		if k == HeaderKey || k == models.PropertyMessageID {
			continue
		}
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	headers, err := Inject(km.Headers, msg.Header, p)
	if err != nil {
		return kafka.Message{}, err
	}
	km.Headers = headers
	return km, nil
}

// FromKafka converts a consumed record into a message. A record without an
// encoded header yields a message with a nil Header. The message is still
// returned when the header fails to decode, together with the error; the
// undecodable bytes are then kept hex-encoded under PropertyRawAMQPHeader.
func FromKafka(km kafka.Message) (*models.Message, error) {
	msg := &models.Message{
		Key:        string(km.Key),
		Value:      km.Value,
		Properties: make(map[string]string, len(km.Headers)),
		Timestamp:  km.Time,
	}
	var raw []byte
	for _, kh := range km.Headers {
		switch kh.Key {
		case HeaderKey:
			raw = kh.Value
		case models.PropertyMessageID:
			msg.ID = string(kh.Value)
		default:
			msg.Properties[kh.Key] = string(kh.Value)
		}
	}

	h, _, err := Extract(km.Headers)
	if err != nil {
		msg.Properties[models.PropertyRawAMQPHeader] = hex.EncodeToString(raw)
		return msg, err
	}
	msg.Header = h
	return msg, nil
}
