package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHeader_Defaults(t *testing.T) {
	h := NewHeader()

	assert.False(t, h.Durable)
	assert.Equal(t, uint8(4), h.Priority)
	assert.Nil(t, h.TimeToLive)
	assert.False(t, h.FirstAcquirer)
	assert.Equal(t, uint32(0), h.DeliveryCount)
}

func TestHeader_Expiry(t *testing.T) {
	h := NewHeader()
	_, ok := h.Expiry()
	assert.False(t, ok)

	h.SetTimeToLive(1500)
	d, ok := h.Expiry()
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, d)

	h.SetTimeToLive(math.MaxUint64)
	d, ok = h.Expiry()
	assert.True(t, ok)
	assert.Equal(t, time.Duration(math.MaxInt64), d)
}

func TestHeader_Expired(t *testing.T) {
	sent := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := NewHeader()
	assert.False(t, h.Expired(sent, sent.Add(24*time.Hour)))

	h.SetTimeToLive(1000)
	assert.False(t, h.Expired(sent, sent.Add(999*time.Millisecond)))
	assert.True(t, h.Expired(sent, sent.Add(time.Second)))
}

func TestHeader_Redelivered(t *testing.T) {
	h := NewHeader()
	h.FirstAcquirer = true

	h.Redelivered()
	assert.Equal(t, uint32(1), h.DeliveryCount)
	assert.False(t, h.FirstAcquirer)

	h.DeliveryCount = math.MaxUint32
	h.Redelivered()
	assert.Equal(t, uint32(math.MaxUint32), h.DeliveryCount)
}

func TestHeader_CloneIsDeep(t *testing.T) {
	h := NewHeader()
	h.SetTimeToLive(10)

	c := h.Clone()
	*c.TimeToLive = 20
	c.Durable = true

	ms, _ := h.TTL()
	assert.Equal(t, uint64(10), ms)
	assert.False(t, h.Durable)
	assert.False(t, h.Equal(c))
}

func TestHeader_EqualDistinguishesTTLPresence(t *testing.T) {
	a := NewHeader()
	b := NewHeader()
	b.SetTimeToLive(0)

	assert.False(t, a.Equal(b))
	b.ClearTimeToLive()
	assert.True(t, a.Equal(b))

	var nilHeader *Header
	assert.True(t, nilHeader.Equal(nil))
	assert.False(t, a.Equal(nil))
}

func TestHeader_String(t *testing.T) {
	h := NewHeader()
	assert.Equal(t, "Header{durable=false priority=4 ttl=none first_acquirer=false delivery_count=0}", h.String())

	h.SetTimeToLive(5000)
	assert.Contains(t, h.String(), "ttl=5000ms")

	var none *Header
	assert.Equal(t, "Header<nil>", none.String())
}

func TestMessage_EnsureHeader(t *testing.T) {
	m := &Message{}
	h := m.EnsureHeader()
	assert.Same(t, h, m.EnsureHeader())
	assert.Equal(t, DefaultPriority, h.Priority)
}
