package carrier

import (
	"math"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"go-amqpheader/pkg/models"
)

// Header table keys used when bridging to AMQP 0-9-1.
const (
	DeliveryCountKey = "x-delivery-count"
	FirstAcquirerKey = "x-first-acquirer"
)

// ApplyToPublishing maps h onto the 0-9-1 basic properties of pub.
// Durable selects persistent delivery and the TTL becomes the per-message
// expiration in milliseconds.
func ApplyToPublishing(h *models.Header, pub *amqp.Publishing) {
	if h.Durable {
		pub.DeliveryMode = amqp.Persistent
	} else {
		pub.DeliveryMode = amqp.Transient
	}
	pub.Priority = h.Priority
	if ms, ok := h.TTL(); ok {
		pub.Expiration = strconv.FormatUint(ms, 10)
	} else {
		pub.Expiration = ""
	}

	if pub.Headers == nil {
		pub.Headers = amqp.Table{}
	}
	pub.Headers[DeliveryCountKey] = int64(h.DeliveryCount)
	pub.Headers[FirstAcquirerKey] = h.FirstAcquirer
}

// FromDelivery rebuilds a header from a 0-9-1 delivery. A broker
// redelivery counts as a failed attempt when no delivery count was carried.
func FromDelivery(d amqp.Delivery) *models.Header {
	h := models.NewHeader()
	h.Durable = d.DeliveryMode == amqp.Persistent
	h.Priority = d.Priority
	if d.Expiration != "" {
		if ms, err := strconv.ParseUint(d.Expiration, 10, 64); err == nil {
			h.SetTimeToLive(ms)
		}
	}

	count, hasCount := tableCount(d.Headers[DeliveryCountKey])
	if hasCount {
		h.DeliveryCount = count
	} else if d.Redelivered {
		h.DeliveryCount = 1
	}

	if fa, ok := d.Headers[FirstAcquirerKey].(bool); ok {
		h.FirstAcquirer = fa && !d.Redelivered
	}
	return h
}

func tableCount(v interface{}) (uint32, bool) {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int16:
		n = int64(x)
	case int8:
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case int:
		n = int64(x)
	default:
		return 0, false
	}
	switch {
	case n < 0:
		return 0, true
	case n > math.MaxUint32:
		return math.MaxUint32, true
	}
	return uint32(n), true
}
