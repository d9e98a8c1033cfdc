package amqp

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_CompactConstructors(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want []byte
	}{
		{"null", Null(), []byte{0x40}},
		{"true", Bool(true), []byte{0x41}},
		{"false", Bool(false), []byte{0x42}},
		{"ubyte", Ubyte(4), []byte{0x50, 0x04}},
		{"ushort", Ushort(0x0102), []byte{0x60, 0x01, 0x02}},
		{"uint0", Uint(0), []byte{0x43}},
		{"smalluint", Uint(200), []byte{0x52, 0xc8}},
		{"uint", Uint(5000), []byte{0x70, 0x00, 0x00, 0x13, 0x88}},
		{"ulong0", Ulong(0), []byte{0x44}},
		{"smallulong", Ulong(0x70), []byte{0x53, 0x70}},
		{"ulong", Ulong(1 << 40), []byte{0x80, 0, 0, 1, 0, 0, 0, 0, 0}},
		{"smallint", Int(-2), []byte{0x54, 0xfe}},
		{"int", Int(1000), []byte{0x71, 0, 0, 0x03, 0xe8}},
		{"smalllong", Long(7), []byte{0x55, 0x07}},
		{"str8", String("hi"), []byte{0xa1, 0x02, 'h', 'i'}},
		{"sym8", Symbol("ab"), []byte{0xa3, 0x02, 'a', 'b'}},
		{"vbin8", Binary([]byte{0xaa}), []byte{0xa0, 0x01, 0xaa}},
		{"list0", List(), []byte{0x45}},
		{"list8", List(Bool(true), Null()), []byte{0xc0, 0x03, 0x02, 0x41, 0x40}},
		{"map8", Map(Pair{Key: Symbol("k"), Value: Uint(0)}), []byte{0xc1, 0x05, 0x02, 0xa3, 0x01, 'k', 0x43}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			size, err := EncodedSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), size)
		})
	}
}

func TestMarshal_DescribedHeaderShape(t *testing.T) {
	v := Described(CompositeHeader.Descriptor(), List(
		Bool(false), Ubyte(4), Null(), Bool(false), Uint(0),
	))
	got, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x53, 0x70, 0xc0, 0x07, 0x05, 0x42, 0x50, 0x04, 0x40, 0x42, 0x43}, got)
}

func TestRoundTrip_AllKinds(t *testing.T) {
	now := time.UnixMilli(1700000000123).UTC()
	values := []Value{
		Null(),
		Bool(true),
		Ubyte(255),
		Ushort(65535),
		Uint(4294967295),
		Ulong(18446744073709551615),
		Byte(-128),
		Short(-32768),
		Int(-2147483648),
		Long(-9223372036854775808),
		Timestamp(now),
		String(strings.Repeat("x", 300)),
		Symbol("amqp:header:list"),
		Binary(bytes.Repeat([]byte{0x01}, 256)),
		List(Uint(1), List(String("nested")), Null()),
		Map(Pair{Key: String("a"), Value: Long(1)}, Pair{Key: Symbol("b"), Value: Null()}),
		Described(Symbolic("amqp:properties:list"), List()),
		Described(Code(0x75), Binary([]byte("payload"))),
	}
	for _, v := range values {
		b, err := Marshal(v)
		require.NoError(t, err, v.String())

		got, err := Unmarshal(b)
		require.NoError(t, err, v.String())
		assert.True(t, v.Equal(got), "want %s got %s", v, got)
	}
}

func TestMarshal_LargeListUsesList32(t *testing.T) {
	items := make([]Value, 300)
	for i := range items {
		items[i] = Uint(uint32(i))
	}
	b, err := Marshal(List(items...))
	require.NoError(t, err)
	assert.Equal(t, byte(0xd0), b[0])

	got, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, 300, got.Len())
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"unknown constructor", []byte{0x98}, ErrInvalidConstructor},
		{"truncated uint", []byte{0x70, 0x00, 0x01}, ErrTruncated},
		{"trailing", []byte{0x40, 0x40}, ErrTrailingBytes},
		{"bad bool", []byte{0x56, 0x02}, ErrInvalidBool},
		{"list size short", []byte{0xc0, 0x00, 0x00}, ErrInvalidLength},
		{"list count exceeds body", []byte{0xc0, 0x02, 0x05, 0x40}, ErrInvalidLength},
		{"list body overrun", []byte{0xc0, 0x05, 0x01, 0x40}, ErrTruncated},
		{"list body not consumed", []byte{0xc0, 0x03, 0x01, 0x40, 0x40}, ErrInvalidLength},
		{"odd map", []byte{0xc1, 0x02, 0x01, 0x40}, ErrOddMapCount},
		{"descriptor not ulong or symbol", []byte{0x00, 0xa1, 0x01, 'x', 0x40}, ErrInvalidConstructor},
		{"str8 overrun", []byte{0xa1, 0x05, 'a'}, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnmarshal_NestingLimit(t *testing.T) {
	var b []byte
	for i := 0; i <= maxDepth+1; i++ {
		b = append(b, 0x00, 0x53, 0x77)
	}
	b = append(b, 0x40)
	_, err := Unmarshal(b)
	assert.ErrorIs(t, err, ErrNestingTooDeep)
}

func TestDecode_Reader(t *testing.T) {
	v, err := Decode(bytes.NewReader([]byte{0x00, 0x53, 0x70, 0x45}))
	require.NoError(t, err)

	d, payload, ok := v.AsDescribed()
	require.True(t, ok)
	assert.True(t, d.Matches(CompositeHeader))
	assert.Equal(t, KindList, payload.Kind())
	assert.Equal(t, 0, payload.Len())
}

func TestEncode_Writer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Ulong(0x70)))
	assert.Equal(t, []byte{0x53, 0x70}, buf.Bytes())
}
