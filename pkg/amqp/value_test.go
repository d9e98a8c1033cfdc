package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_AccessorsRejectOtherKinds(t *testing.T) {
	v := Ubyte(9)

	n, ok := v.AsUbyte()
	assert.True(t, ok)
	assert.Equal(t, uint8(9), n)

	_, ok = v.AsUint()
	assert.False(t, ok)
	_, ok = v.AsBool()
	assert.False(t, ok)
	_, ok = v.AsList()
	assert.False(t, ok)

	wide, ok := v.AsUnsigned()
	assert.True(t, ok)
	assert.Equal(t, uint64(9), wide)

	_, ok = Int(3).AsUnsigned()
	assert.False(t, ok)
}

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
	assert.True(t, v.Equal(Null()))
}

func TestValue_ListDoesNotAliasCaller(t *testing.T) {
	items := []Value{Uint(1), Uint(2)}
	v := List(items...)
	items[0] = Null()

	got, ok := v.AsList()
	require.True(t, ok)
	assert.True(t, got[0].Equal(Uint(1)))

	got[1] = Null()
	again, _ := v.AsList()
	assert.True(t, again[1].Equal(Uint(2)))
}

func TestValue_BinaryDoesNotAliasCaller(t *testing.T) {
	raw := []byte{1, 2, 3}
	v := Binary(raw)
	raw[0] = 9

	got, ok := v.AsBinary()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestValue_Equal(t *testing.T) {
	a := Described(Code(0x70), List(Bool(true), Ubyte(1)))
	b := Described(Code(0x70), List(Bool(true), Ubyte(1)))
	c := Described(Code(0x71), List(Bool(true), Ubyte(1)))
	d := Described(Code(0x70), List(Bool(true), Uint(1)))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, List().Equal(Map()))
}

func TestValue_MapEntries(t *testing.T) {
	v := Map(
		Pair{Key: Symbol("x-opt"), Value: String("a")},
		Pair{Key: Symbol("x-count"), Value: Uint(3)},
	)
	assert.Equal(t, 2, v.Len())

	pairs, ok := v.AsMap()
	require.True(t, ok)
	require.Len(t, pairs, 2)
	assert.True(t, pairs[1].Key.Equal(Symbol("x-count")))
	assert.Equal(t, `{:x-opt: "a", :x-count: uint(3)}`, v.String())
}

func TestValue_String(t *testing.T) {
	v := Described(CompositeHeader.Descriptor(), List(Bool(true), Ubyte(4), Null()))
	assert.Equal(t, "described{0x70: [true, ubyte(4), null]}", v.String())
}

func TestDescriptor_SymbolicResolvesRegisteredComposite(t *testing.T) {
	d := Symbolic("amqp:header:list")
	code, ok := d.Code()
	require.True(t, ok)
	assert.Equal(t, uint64(0x70), code)
	assert.True(t, d.Matches(CompositeHeader))
	assert.False(t, d.Matches(CompositeProperties))

	_, ok = Symbolic("com.example:custom").Code()
	assert.False(t, ok)
}

func TestLookupComposite(t *testing.T) {
	c, ok := LookupComposite(0x73)
	require.True(t, ok)
	assert.Equal(t, CompositeProperties, c)
	assert.Equal(t, "amqp:properties:list", c.String())

	_, ok = LookupComposite(0x10)
	assert.False(t, ok)
	assert.Equal(t, "composite(0x10)", Composite(0x10).String())
}
