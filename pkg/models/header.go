package models

import (
	"fmt"
	"math"
	"time"
)

// DefaultPriority is the priority of a header that does not carry one.
const DefaultPriority uint8 = 4

// Header carries the standard delivery details of an AMQP 1.0 message.
type Header struct {
	// Durable asks intermediaries to keep the message across restarts.
	Durable bool
	// Priority is the relative delivery priority.
	Priority uint8
	// TimeToLive is the expiry in milliseconds. Nil means no expiry,
	// which is distinct from a zero TTL.
	TimeToLive *uint64
	// FirstAcquirer is true when no earlier acquirer failed to deliver it.
	FirstAcquirer bool
	// DeliveryCount is the number of prior failed delivery attempts.
	DeliveryCount uint32
}

// NewHeader returns a header with every field at its default.
func NewHeader() *Header {
	return &Header{Priority: DefaultPriority}
}

// SetTimeToLive sets the TTL to ms milliseconds.
func (h *Header) SetTimeToLive(ms uint64) {
	h.TimeToLive = &ms
}

func (h *Header) ClearTimeToLive() {
	h.TimeToLive = nil
}

// TTL returns the TTL in milliseconds and whether one is set.
func (h *Header) TTL() (uint64, bool) {
	if h.TimeToLive == nil {
		return 0, false
	}
	return *h.TimeToLive, true
}

// Expiry returns the TTL as a duration, saturating at the largest
// representable duration.
func (h *Header) Expiry() (time.Duration, bool) {
	ms, ok := h.TTL()
	if !ok {
		return 0, false
	}
	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(ms) * time.Millisecond, true
}

// Expired reports whether a message sent at sentAt has outlived its TTL
// at now. Headers without a TTL never expire.
func (h *Header) Expired(sentAt, now time.Time) bool {
	ttl, ok := h.Expiry()
	if !ok {
		return false
	}
	return now.Sub(sentAt) >= ttl
}

// Redelivered records a failed delivery attempt.
func (h *Header) Redelivered() {
	if h.DeliveryCount < math.MaxUint32 {
		h.DeliveryCount++
	}
	h.FirstAcquirer = false
}

// Clone returns a deep copy of h.
func (h *Header) Clone() *Header {
	out := *h
	if h.TimeToLive != nil {
		ttl := *h.TimeToLive
		out.TimeToLive = &ttl
	}
	return &out
}

// Equal compares all fields, including TTL presence.
func (h *Header) Equal(o *Header) bool {
	if h == nil || o == nil {
		return h == o
	}
	if (h.TimeToLive == nil) != (o.TimeToLive == nil) {
		return false
	}
	if h.TimeToLive != nil && *h.TimeToLive != *o.TimeToLive {
		return false
	}
	return h.Durable == o.Durable &&
		h.Priority == o.Priority &&
		h.FirstAcquirer == o.FirstAcquirer &&
		h.DeliveryCount == o.DeliveryCount
}

func (h *Header) String() string {
	if h == nil {
		return "Header<nil>"
	}
	ttl := "none"
	if ms, ok := h.TTL(); ok {
		ttl = fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("Header{durable=%t priority=%d ttl=%s first_acquirer=%t delivery_count=%d}",
		h.Durable, h.Priority, ttl, h.FirstAcquirer, h.DeliveryCount)
}
