package ffi

import (
	"go-amqpheader/internal/handle"
	"go-amqpheader/pkg/models"
)

// HeaderCreate returns a header with every field at its default.
func HeaderCreate() HeaderHandle {
	return newHeaderHandle(models.NewHeader())
}

// HeaderDestroy releases h. h must not be used afterwards.
func HeaderDestroy(h HeaderHandle) {
	headers.Remove(handle.Handle(h))
}

func HeaderGetDurable(h HeaderHandle, durable *bool) int32 {
	*durable = header(h).Durable
	return StatusOK
}

func HeaderGetPriority(h HeaderHandle, priority *uint8) int32 {
	*priority = header(h).Priority
	return StatusOK
}

// HeaderGetTTL writes the TTL in milliseconds. When the header has no TTL
// it writes 0 and returns StatusAbsent.
func HeaderGetTTL(h HeaderHandle, ttl *uint64) int32 {
	ms, ok := header(h).TTL()
	if !ok {
		*ttl = 0
		return StatusAbsent
	}
	*ttl = ms
	return StatusOK
}

func HeaderGetFirstAcquirer(h HeaderHandle, firstAcquirer *bool) int32 {
	*firstAcquirer = header(h).FirstAcquirer
	return StatusOK
}

func HeaderGetDeliveryCount(h HeaderHandle, deliveryCount *uint32) int32 {
	*deliveryCount = header(h).DeliveryCount
	return StatusOK
}

func HeaderSetDurable(ctx CallContextHandle, h HeaderHandle, durable bool) int32 {
	_ = callContext(ctx)
	header(h).Durable = durable
	return StatusOK
}

func HeaderSetPriority(ctx CallContextHandle, h HeaderHandle, priority uint8) int32 {
	_ = callContext(ctx)
	header(h).Priority = priority
	return StatusOK
}

func HeaderSetTTL(ctx CallContextHandle, h HeaderHandle, ttl uint64) int32 {
	_ = callContext(ctx)
	header(h).SetTimeToLive(ttl)
	return StatusOK
}

func HeaderSetFirstAcquirer(ctx CallContextHandle, h HeaderHandle, firstAcquirer bool) int32 {
	_ = callContext(ctx)
	header(h).FirstAcquirer = firstAcquirer
	return StatusOK
}

func HeaderSetDeliveryCount(ctx CallContextHandle, h HeaderHandle, deliveryCount uint32) int32 {
	_ = callContext(ctx)
	header(h).DeliveryCount = deliveryCount
	return StatusOK
}
