package models

import (
	"fmt"
	"math"
	"strings"

	"go-amqpheader/pkg/amqp"
)

// HeaderDescriptor is the composite code of the message header section.
const HeaderDescriptor = amqp.CompositeHeader

// EncodePolicy selects how a header is laid out as a described list.
type EncodePolicy int

const (
	// EncodeFull writes all five positions. An absent TTL is written as null.
	EncodeFull EncodePolicy = iota
	// EncodeMinimal writes null for fields at their default and drops
	// trailing nulls.
	EncodeMinimal
)

func (p EncodePolicy) String() string {
	switch p {
	case EncodeFull:
		return "full"
	case EncodeMinimal:
		return "minimal"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// UnmarshalText lets configuration decoders read a policy by name.
func (p *EncodePolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseEncodePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseEncodePolicy parses "full" or "minimal".
func ParseEncodePolicy(s string) (EncodePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return EncodeFull, nil
	case "minimal", "compact":
		return EncodeMinimal, nil
	}
	return EncodeFull, fmt.Errorf("%w: %q", ErrUnknownEncodePolicy, s)
}

const (
	fieldDurable = iota
	fieldPriority
	fieldTimeToLive
	fieldFirstAcquirer
	fieldDeliveryCount
	headerFieldCount
)

var headerFieldNames = [headerFieldCount]string{
	fieldDurable:       "durable",
	fieldPriority:      "priority",
	fieldTimeToLive:    "time-to-live",
	fieldFirstAcquirer: "first-acquirer",
	fieldDeliveryCount: "delivery-count",
}

// ToDescribed converts h into its described-list form using EncodeFull.
func (h *Header) ToDescribed() amqp.Value {
	return h.ToDescribedWith(EncodeFull)
}

// ToDescribedWith converts h into its described-list form. Unknown
// policies encode as EncodeFull.
func (h *Header) ToDescribedWith(p EncodePolicy) amqp.Value {
	fields := []amqp.Value{
		fieldDurable:       amqp.Bool(h.Durable),
		fieldPriority:      amqp.Ubyte(h.Priority),
		fieldTimeToLive:    ttlValue(h.TimeToLive),
		fieldFirstAcquirer: amqp.Bool(h.FirstAcquirer),
		fieldDeliveryCount: amqp.Uint(h.DeliveryCount),
	}
	if p == EncodeMinimal {
		if !h.Durable {
			fields[fieldDurable] = amqp.Null()
		}
		if h.Priority == DefaultPriority {
			fields[fieldPriority] = amqp.Null()
		}
		if !h.FirstAcquirer {
			fields[fieldFirstAcquirer] = amqp.Null()
		}
		if h.DeliveryCount == 0 {
			fields[fieldDeliveryCount] = amqp.Null()
		}
		n := len(fields)
		for n > 0 && fields[n-1].IsNull() {
			n--
		}
		fields = fields[:n]
	}
	return amqp.Described(HeaderDescriptor.Descriptor(), amqp.List(fields...))
}

// TTLs that fit the AMQP milliseconds type go out as uint; larger values
// need ulong to survive a round trip.
func ttlValue(ttl *uint64) amqp.Value {
	switch {
	case ttl == nil:
		return amqp.Null()
	case *ttl <= math.MaxUint32:
		return amqp.Uint(uint32(*ttl))
	default:
		return amqp.Ulong(*ttl)
	}
}

// FromDescribed builds a header from a described value with descriptor
// 0x70 and a list payload. Missing or null elements keep their defaults
// and elements past the fifth are ignored. On error no header is returned.
func FromDescribed(v amqp.Value) (*Header, error) {
	desc, payload, ok := v.AsDescribed()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotDescribed, v.Kind())
	}
	if !desc.Matches(HeaderDescriptor) {
		return nil, fmt.Errorf("%w: %s", ErrWrongDescriptor, desc)
	}
	items, ok := payload.AsList()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrWrongPayloadShape, payload.Kind())
	}

	h := NewHeader()
	for i, item := range items {
		if i >= headerFieldCount {
			break
		}
		if item.IsNull() {
			continue
		}
		if err := h.setField(i, item); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Header) setField(i int, item amqp.Value) error {
	mismatch := &FieldError{Field: headerFieldNames[i], Kind: item.Kind()}
	switch i {
	case fieldDurable:
		b, ok := item.AsBool()
		if !ok {
			return mismatch
		}
		h.Durable = b
	case fieldPriority:
		p, ok := item.AsUbyte()
		if !ok {
			return mismatch
		}
		h.Priority = p
	case fieldTimeToLive:
		ms, ok := item.AsUnsigned()
		if !ok {
			return mismatch
		}
		h.SetTimeToLive(ms)
	case fieldFirstAcquirer:
		b, ok := item.AsBool()
		if !ok {
			return mismatch
		}
		h.FirstAcquirer = b
	case fieldDeliveryCount:
		n, ok := item.AsUnsigned()
		if !ok || n > math.MaxUint32 {
			return mismatch
		}
		h.DeliveryCount = uint32(n)
	}
	return nil
}

// MarshalHeader encodes h to the AMQP binary form under policy p.
func MarshalHeader(h *Header, p EncodePolicy) ([]byte, error) {
	return amqp.Marshal(h.ToDescribedWith(p))
}

// MarshalBinary encodes h with EncodeFull.
func (h *Header) MarshalBinary() ([]byte, error) {
	return MarshalHeader(h, EncodeFull)
}

// UnmarshalBinary decodes an encoded header section into h. h is left
// untouched on error.
func (h *Header) UnmarshalBinary(b []byte) error {
	out, err := UnmarshalHeader(b)
	if err != nil {
		return err
	}
	*h = *out
	return nil
}

// UnmarshalHeader decodes an encoded header section.
func UnmarshalHeader(b []byte) (*Header, error) {
	v, err := amqp.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("decode header section: %w", err)
	}
	return FromDescribed(v)
}
