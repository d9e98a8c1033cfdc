package ffi

import (
	"go-amqpheader/internal/config"
	"go-amqpheader/internal/handle"
	"go-amqpheader/pkg/amqp"
	"go-amqpheader/pkg/models"
)

// HeaderHandle references a header owned by the caller.
type HeaderHandle uintptr

// ValueHandle references a generic AMQP value owned by the caller.
type ValueHandle uintptr

// CallContextHandle references a diagnostic context owned by the caller.
type CallContextHandle uintptr

var boundary = config.LoadBoundary()

var (
	headers  = handle.NewTable[models.Header]("header", boundary.CheckHandles)
	values   = handle.NewTable[amqp.Value]("amqp value", boundary.CheckHandles)
	contexts = handle.NewTable[CallContext]("call context", boundary.CheckHandles)
)

func header(h HeaderHandle) *models.Header {
	return headers.Get(handle.Handle(h))
}

func value(v ValueHandle) *amqp.Value {
	return values.Get(handle.Handle(v))
}

func newHeaderHandle(h *models.Header) HeaderHandle {
	return HeaderHandle(headers.Insert(h))
}

func newValueHandle(v amqp.Value) ValueHandle {
	return ValueHandle(values.Insert(&v))
}

// LiveHeaders returns the number of header handles not yet destroyed.
func LiveHeaders() int { return headers.Live() }

// LiveValues returns the number of value handles not yet destroyed.
func LiveValues() int { return values.Live() }

// LiveCallContexts returns the number of call contexts not yet destroyed.
func LiveCallContexts() int { return contexts.Live() }

// TableStats holds the lifetime counters of one handle kind.
type TableStats struct {
	Allocated int64
	Released  int64
	Live      int
}

// HandleStats reports every handle kind the boundary hands out.
type HandleStats struct {
	Headers      TableStats
	Values       TableStats
	CallContexts TableStats
}

// Stats snapshots the handle tables. Allocated minus Released equals Live
// for each kind once no call is in flight.
func Stats() HandleStats {
	return HandleStats{
		Headers:      tableStats(headers),
		Values:       tableStats(values),
		CallContexts: tableStats(contexts),
	}
}

func tableStats[T any](t *handle.Table[T]) TableStats {
	allocated, released := t.Stats()
	return TableStats{Allocated: allocated, Released: released, Live: t.Live()}
}
