package amqp

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Constructor codes from the AMQP 1.0 type system.
const (
	codeDescribed  byte = 0x00
	codeNull       byte = 0x40
	codeBoolTrue   byte = 0x41
	codeBoolFalse  byte = 0x42
	codeUint0      byte = 0x43
	codeUlong0     byte = 0x44
	codeList0      byte = 0x45
	codeUbyte      byte = 0x50
	codeByte       byte = 0x51
	codeSmallUint  byte = 0x52
	codeSmallUlong byte = 0x53
	codeSmallInt   byte = 0x54
	codeSmallLong  byte = 0x55
	codeBool       byte = 0x56
	codeUshort     byte = 0x60
	codeShort      byte = 0x61
	codeUint       byte = 0x70
	codeInt        byte = 0x71
	codeUlong      byte = 0x80
	codeLong       byte = 0x81
	codeTimestamp  byte = 0x83
	codeVbin8      byte = 0xa0
	codeStr8       byte = 0xa1
	codeSym8       byte = 0xa3
	codeVbin32     byte = 0xb0
	codeStr32      byte = 0xb1
	codeSym32      byte = 0xb3
	codeList8      byte = 0xc0
	codeMap8       byte = 0xc1
	codeList32     byte = 0xd0
	codeMap32      byte = 0xd1
)

// Encode writes the binary encoding of v to w.
func Encode(w io.Writer, v Value) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Marshal returns the binary encoding of v.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodedSize returns the number of bytes Marshal produces for v.
func EncodedSize(v Value) (int, error) {
	b, err := Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteByte(codeNull)
	case KindBool:
		if v.u == 1 {
			buf.WriteByte(codeBoolTrue)
		} else {
			buf.WriteByte(codeBoolFalse)
		}
	case KindUbyte:
		buf.Write([]byte{codeUbyte, byte(v.u)})
	case KindUshort:
		buf.WriteByte(codeUshort)
		writeUint16(buf, uint16(v.u))
	case KindUint:
		switch {
		case v.u == 0:
			buf.WriteByte(codeUint0)
		case v.u <= math.MaxUint8:
			buf.Write([]byte{codeSmallUint, byte(v.u)})
		default:
			buf.WriteByte(codeUint)
			writeUint32(buf, uint32(v.u))
		}
	case KindUlong:
		switch {
		case v.u == 0:
			buf.WriteByte(codeUlong0)
		case v.u <= math.MaxUint8:
			buf.Write([]byte{codeSmallUlong, byte(v.u)})
		default:
			buf.WriteByte(codeUlong)
			writeUint64(buf, v.u)
		}
	case KindByte:
		buf.Write([]byte{codeByte, byte(int8(v.i))})
	case KindShort:
		buf.WriteByte(codeShort)
		writeUint16(buf, uint16(int16(v.i)))
	case KindInt:
		if v.i >= math.MinInt8 && v.i <= math.MaxInt8 {
			buf.Write([]byte{codeSmallInt, byte(int8(v.i))})
		} else {
			buf.WriteByte(codeInt)
			writeUint32(buf, uint32(int32(v.i)))
		}
	case KindLong:
		if v.i >= math.MinInt8 && v.i <= math.MaxInt8 {
			buf.Write([]byte{codeSmallLong, byte(int8(v.i))})
		} else {
			buf.WriteByte(codeLong)
			writeUint64(buf, uint64(v.i))
		}
	case KindTimestamp:
		buf.WriteByte(codeTimestamp)
		writeUint64(buf, uint64(v.i))
	case KindString:
		return writeVariable(buf, codeStr8, codeStr32, []byte(v.s))
	case KindSymbol:
		return writeVariable(buf, codeSym8, codeSym32, []byte(v.s))
	case KindBinary:
		return writeVariable(buf, codeVbin8, codeVbin32, v.b)
	case KindList:
		if len(v.items) == 0 {
			buf.WriteByte(codeList0)
			return nil
		}
		return writeCompound(buf, codeList8, codeList32, v.items)
	case KindMap:
		return writeCompound(buf, codeMap8, codeMap32, v.items)
	case KindDescribed:
		buf.WriteByte(codeDescribed)
		if err := writeValue(buf, v.desc.value()); err != nil {
			return err
		}
		return writeValue(buf, v.items[0])
	default:
		return ErrInvalidConstructor
	}
	return nil
}

func writeVariable(buf *bytes.Buffer, small, large byte, data []byte) error {
	switch {
	case len(data) <= math.MaxUint8:
		buf.Write([]byte{small, byte(len(data))})
	case uint64(len(data)) <= math.MaxUint32:
		buf.WriteByte(large)
		writeUint32(buf, uint32(len(data)))
	default:
		return ErrInvalidLength
	}
	buf.Write(data)
	return nil
}

// writeCompound writes a list or map body. The size field counts the
// count field plus the encoded elements.
func writeCompound(buf *bytes.Buffer, small, large byte, items []Value) error {
	var body bytes.Buffer
	for _, item := range items {
		if err := writeValue(&body, item); err != nil {
			return err
		}
	}
	count := len(items)
	if body.Len()+1 <= math.MaxUint8 && count <= math.MaxUint8 {
		buf.Write([]byte{small, byte(body.Len() + 1), byte(count)})
		buf.Write(body.Bytes())
		return nil
	}
	if uint64(body.Len())+4 > math.MaxUint32 {
		return ErrInvalidLength
	}
	buf.WriteByte(large)
	writeUint32(buf, uint32(body.Len()+4))
	writeUint32(buf, uint32(count))
	buf.Write(body.Bytes())
	return nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
