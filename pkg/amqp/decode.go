package amqp

import (
	"encoding/binary"
	"io"
)

const maxDepth = 64

// Unmarshal decodes exactly one value from b.
func Unmarshal(b []byte) (Value, error) {
	d := decoder{buf: b}
	v, err := d.value(0)
	if err != nil {
		return Value{}, err
	}
	if d.off != len(d.buf) {
		return Value{}, ErrTrailingBytes
	}
	return v, nil
}

// Decode reads all of r and decodes exactly one value from it.
func Decode(r io.Reader) (Value, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Value{}, err
	}
	return Unmarshal(b)
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) next(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.off < n {
		return nil, ErrTruncated
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u8() (byte, error) {
	b, err := d.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	b, err := d.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) u64() (uint64, error) {
	b, err := d.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) value(depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrNestingTooDeep
	}
	code, err := d.u8()
	if err != nil {
		return Value{}, err
	}
	switch code {
	case codeDescribed:
		desc, err := d.descriptor(depth + 1)
		if err != nil {
			return Value{}, err
		}
		inner, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		return Described(desc, inner), nil
	case codeNull:
		return Null(), nil
	case codeBoolTrue:
		return Bool(true), nil
	case codeBoolFalse:
		return Bool(false), nil
	case codeBool:
		b, err := d.u8()
		if err != nil {
			return Value{}, err
		}
		switch b {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		}
		return Value{}, ErrInvalidBool
	case codeUbyte:
		b, err := d.u8()
		return Ubyte(b), err
	case codeUshort:
		n, err := d.u16()
		return Ushort(n), err
	case codeUint0:
		return Uint(0), nil
	case codeSmallUint:
		b, err := d.u8()
		return Uint(uint32(b)), err
	case codeUint:
		n, err := d.u32()
		return Uint(n), err
	case codeUlong0:
		return Ulong(0), nil
	case codeSmallUlong:
		b, err := d.u8()
		return Ulong(uint64(b)), err
	case codeUlong:
		n, err := d.u64()
		return Ulong(n), err
	case codeByte:
		b, err := d.u8()
		return Byte(int8(b)), err
	case codeShort:
		n, err := d.u16()
		return Short(int16(n)), err
	case codeSmallInt:
		b, err := d.u8()
		return Int(int32(int8(b))), err
	case codeInt:
		n, err := d.u32()
		return Int(int32(n)), err
	case codeSmallLong:
		b, err := d.u8()
		return Long(int64(int8(b))), err
	case codeLong:
		n, err := d.u64()
		return Long(int64(n)), err
	case codeTimestamp:
		n, err := d.u64()
		return Value{kind: KindTimestamp, i: int64(n)}, err
	case codeStr8, codeStr32:
		b, err := d.variable(code == codeStr32)
		return String(string(b)), err
	case codeSym8, codeSym32:
		b, err := d.variable(code == codeSym32)
		return Symbol(string(b)), err
	case codeVbin8, codeVbin32:
		b, err := d.variable(code == codeVbin32)
		return Binary(b), err
	case codeList0:
		return List(), nil
	case codeList8, codeList32:
		items, err := d.compound(code == codeList32, depth)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindList, items: items}, nil
	case codeMap8, codeMap32:
		items, err := d.compound(code == codeMap32, depth)
		if err != nil {
			return Value{}, err
		}
		if len(items)%2 != 0 {
			return Value{}, ErrOddMapCount
		}
		return Value{kind: KindMap, items: items}, nil
	}
	return Value{}, ErrInvalidConstructor
}

func (d *decoder) descriptor(depth int) (Descriptor, error) {
	v, err := d.value(depth)
	if err != nil {
		return Descriptor{}, err
	}
	if code, ok := v.AsUlong(); ok {
		return Code(code), nil
	}
	if name, ok := v.AsSymbol(); ok {
		return Symbolic(name), nil
	}
	return Descriptor{}, ErrInvalidConstructor
}

func (d *decoder) variable(wide bool) ([]byte, error) {
	var n int
	if wide {
		l, err := d.u32()
		if err != nil {
			return nil, err
		}
		n = int(l)
	} else {
		l, err := d.u8()
		if err != nil {
			return nil, err
		}
		n = int(l)
	}
	return d.next(n)
}

// compound reads the size and count fields of a list or map, then exactly
// count elements that must fill the declared size.
func (d *decoder) compound(wide bool, depth int) ([]Value, error) {
	var size, count, countWidth int
	if wide {
		s, err := d.u32()
		if err != nil {
			return nil, err
		}
		c, err := d.u32()
		if err != nil {
			return nil, err
		}
		size, count, countWidth = int(s), int(c), 4
	} else {
		s, err := d.u8()
		if err != nil {
			return nil, err
		}
		c, err := d.u8()
		if err != nil {
			return nil, err
		}
		size, count, countWidth = int(s), int(c), 1
	}
	bodyLen := size - countWidth
	if bodyLen < 0 {
		return nil, ErrInvalidLength
	}
	body, err := d.next(bodyLen)
	if err != nil {
		return nil, err
	}
	if count > len(body) {
		return nil, ErrInvalidLength
	}
	sub := decoder{buf: body}
	items := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		item, err := sub.value(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if sub.off != len(sub.buf) {
		return nil, ErrInvalidLength
	}
	return items, nil
}
