package models

import (
	"math"
	"testing"
	"testing/quick"

	"go-amqpheader/pkg/amqp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHeader(durable bool, priority uint8, hasTTL bool, ttl uint64, first bool, count uint32) *Header {
	h := &Header{
		Durable:       durable,
		Priority:      priority,
		FirstAcquirer: first,
		DeliveryCount: count,
	}
	if hasTTL {
		h.SetTimeToLive(ttl)
	}
	return h
}

func TestHeader_RoundTripProperty(t *testing.T) {
	for _, policy := range []EncodePolicy{EncodeFull, EncodeMinimal} {
		t.Run(policy.String(), func(t *testing.T) {
			check := func(durable bool, priority uint8, hasTTL bool, ttl uint64, first bool, count uint32) bool {
				h := buildHeader(durable, priority, hasTTL, ttl, first, count)
				got, err := FromDescribed(h.ToDescribedWith(policy))
				return err == nil && got.Equal(h)
			}
			require.NoError(t, quick.Check(check, &quick.Config{MaxCount: 2000}))
		})
	}
}

func TestHeader_RoundTripBoundaries(t *testing.T) {
	cases := []*Header{
		NewHeader(),
		buildHeader(true, 255, true, math.MaxUint64, true, math.MaxUint32),
		buildHeader(false, 0, true, 0, false, 0),
		buildHeader(false, 4, true, math.MaxUint32, false, 1),
		buildHeader(false, 4, true, math.MaxUint32+1, false, 1),
	}
	for _, h := range cases {
		for _, policy := range []EncodePolicy{EncodeFull, EncodeMinimal} {
			b, err := MarshalHeader(h, policy)
			require.NoError(t, err)

			got, err := UnmarshalHeader(b)
			require.NoError(t, err)
			assert.True(t, got.Equal(h), "%s policy=%s got %s", h, policy, got)
		}
	}
}

func TestHeader_ZeroTTLIsNotAbsent(t *testing.T) {
	h := NewHeader()
	h.SetTimeToLive(0)

	got, err := FromDescribed(h.ToDescribed())
	require.NoError(t, err)

	ms, ok := got.TTL()
	assert.True(t, ok)
	assert.Equal(t, uint64(0), ms)
}

func TestToDescribed_FullPolicyEmitsDefaults(t *testing.T) {
	v := NewHeader().ToDescribed()

	d, payload, ok := v.AsDescribed()
	require.True(t, ok)
	code, _ := d.Code()
	assert.Equal(t, uint64(0x70), code)

	items, ok := payload.AsList()
	require.True(t, ok)
	require.Len(t, items, 5)
	assert.True(t, items[0].Equal(amqp.Bool(false)))
	assert.True(t, items[1].Equal(amqp.Ubyte(4)))
	assert.True(t, items[2].IsNull())
	assert.True(t, items[3].Equal(amqp.Bool(false)))
	assert.True(t, items[4].Equal(amqp.Uint(0)))
}

func TestToDescribed_TTLWidth(t *testing.T) {
	h := NewHeader()
	h.SetTimeToLive(5000)
	_, payload, _ := h.ToDescribed().AsDescribed()
	items, _ := payload.AsList()
	assert.Equal(t, amqp.KindUint, items[2].Kind())

	h.SetTimeToLive(math.MaxUint32 + 1)
	_, payload, _ = h.ToDescribed().AsDescribed()
	items, _ = payload.AsList()
	assert.Equal(t, amqp.KindUlong, items[2].Kind())
}

func TestToDescribed_MinimalPolicy(t *testing.T) {
	b, err := MarshalHeader(NewHeader(), EncodeMinimal)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x53, 0x70, 0x45}, b)

	h := NewHeader()
	h.Durable = true
	_, payload, _ := h.ToDescribedWith(EncodeMinimal).AsDescribed()
	assert.Equal(t, 1, payload.Len())

	h = NewHeader()
	h.DeliveryCount = 2
	_, payload, _ = h.ToDescribedWith(EncodeMinimal).AsDescribed()
	items, _ := payload.AsList()
	require.Len(t, items, 5)
	assert.True(t, items[0].IsNull())
	assert.True(t, items[1].IsNull())
	assert.True(t, items[4].Equal(amqp.Uint(2)))
}

func TestFromDescribed_TruncatedList(t *testing.T) {
	v := amqp.Described(amqp.Code(0x70), amqp.List(amqp.Bool(true), amqp.Ubyte(7)))

	h, err := FromDescribed(v)
	require.NoError(t, err)
	assert.True(t, h.Durable)
	assert.Equal(t, uint8(7), h.Priority)
	_, hasTTL := h.TTL()
	assert.False(t, hasTTL)
	assert.False(t, h.FirstAcquirer)
	assert.Equal(t, uint32(0), h.DeliveryCount)
}

func TestFromDescribed_EmptyListIsAllDefaults(t *testing.T) {
	h, err := FromDescribed(amqp.Described(amqp.Code(0x70), amqp.List()))
	require.NoError(t, err)
	assert.True(t, h.Equal(NewHeader()))
}

func TestFromDescribed_NullElementsKeepDefaults(t *testing.T) {
	v := amqp.Described(amqp.Code(0x70), amqp.List(
		amqp.Null(), amqp.Null(), amqp.Null(), amqp.Null(), amqp.Uint(3),
	))
	h, err := FromDescribed(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultPriority, h.Priority)
	assert.Equal(t, uint32(3), h.DeliveryCount)
}

func TestFromDescribed_ExtraElementsIgnored(t *testing.T) {
	v := amqp.Described(amqp.Code(0x70), amqp.List(
		amqp.Bool(true), amqp.Ubyte(1), amqp.Uint(10), amqp.Bool(true), amqp.Uint(2),
		amqp.String("future field"), amqp.Map(),
	))
	h, err := FromDescribed(v)
	require.NoError(t, err)
	assert.True(t, h.Durable)
	assert.Equal(t, uint32(2), h.DeliveryCount)
}

func TestFromDescribed_SymbolicDescriptor(t *testing.T) {
	v := amqp.Described(amqp.Symbolic("amqp:header:list"), amqp.List(amqp.Bool(true)))
	h, err := FromDescribed(v)
	require.NoError(t, err)
	assert.True(t, h.Durable)
}

func TestFromDescribed_WrongDescriptor(t *testing.T) {
	for _, d := range []amqp.Descriptor{amqp.Code(0x71), amqp.Code(0), amqp.Symbolic("amqp:properties:list")} {
		h, err := FromDescribed(amqp.Described(d, amqp.List()))
		assert.Nil(t, h)
		assert.ErrorIs(t, err, ErrWrongDescriptor)
		assert.True(t, IsConversionError(err))
	}
}

func TestFromDescribed_WrongPayloadShape(t *testing.T) {
	payloads := []amqp.Value{
		amqp.Uint(1),
		amqp.String("header"),
		amqp.Map(),
		amqp.Null(),
		amqp.Described(amqp.Code(0x70), amqp.List()),
	}
	for _, p := range payloads {
		h, err := FromDescribed(amqp.Described(amqp.Code(0x70), p))
		assert.Nil(t, h)
		assert.ErrorIs(t, err, ErrWrongPayloadShape, p.String())
	}
}

func TestFromDescribed_NotDescribed(t *testing.T) {
	h, err := FromDescribed(amqp.List(amqp.Bool(true)))
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrNotDescribed)
}

func TestFromDescribed_WrongFieldType(t *testing.T) {
	tests := []struct {
		name  string
		items []amqp.Value
		field string
	}{
		{"durable", []amqp.Value{amqp.Uint(1)}, "durable"},
		{"priority", []amqp.Value{amqp.Null(), amqp.Uint(4)}, "priority"},
		{"ttl", []amqp.Value{amqp.Null(), amqp.Null(), amqp.Long(5)}, "time-to-live"},
		{"first acquirer", []amqp.Value{amqp.Null(), amqp.Null(), amqp.Null(), amqp.String("yes")}, "first-acquirer"},
		{"delivery count overflow", []amqp.Value{amqp.Null(), amqp.Null(), amqp.Null(), amqp.Null(), amqp.Ulong(math.MaxUint32 + 1)}, "delivery-count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := FromDescribed(amqp.Described(amqp.Code(0x70), amqp.List(tt.items...)))
			assert.Nil(t, h)
			require.ErrorIs(t, err, ErrWrongFieldType)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestFromDescribed_DoesNotAliasSource(t *testing.T) {
	src := amqp.Described(amqp.Code(0x70), amqp.List(amqp.Bool(false), amqp.Ubyte(1), amqp.Uint(100)))
	h, err := FromDescribed(src)
	require.NoError(t, err)

	h.SetTimeToLive(1)
	h.Priority = 9

	again, err := FromDescribed(src)
	require.NoError(t, err)
	ms, _ := again.TTL()
	assert.Equal(t, uint64(100), ms)
	assert.Equal(t, uint8(1), again.Priority)
}

func TestHeader_UnmarshalBinaryLeavesHeaderOnError(t *testing.T) {
	h := NewHeader()
	h.Durable = true

	err := h.UnmarshalBinary([]byte{0x00, 0x53, 0x71, 0x45})
	assert.ErrorIs(t, err, ErrWrongDescriptor)
	assert.True(t, h.Durable)

	err = h.UnmarshalBinary([]byte{0x00, 0x53})
	assert.ErrorIs(t, err, amqp.ErrTruncated)

	require.NoError(t, h.UnmarshalBinary([]byte{0x00, 0x53, 0x70, 0x45}))
	assert.False(t, h.Durable)
}

func TestParseEncodePolicy(t *testing.T) {
	p, err := ParseEncodePolicy("Minimal")
	require.NoError(t, err)
	assert.Equal(t, EncodeMinimal, p)

	p, err = ParseEncodePolicy("")
	require.NoError(t, err)
	assert.Equal(t, EncodeFull, p)

	_, err = ParseEncodePolicy("sparse")
	assert.ErrorIs(t, err, ErrUnknownEncodePolicy)
}
