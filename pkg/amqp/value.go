package amqp

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the AMQP type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindUbyte
	KindUshort
	KindUint
	KindUlong
	KindByte
	KindShort
	KindInt
	KindLong
	KindTimestamp
	KindString
	KindSymbol
	KindBinary
	KindList
	KindMap
	KindDescribed
)

var kindNames = [...]string{
	KindNull:      "null",
	KindBool:      "boolean",
	KindUbyte:     "ubyte",
	KindUshort:    "ushort",
	KindUint:      "uint",
	KindUlong:     "ulong",
	KindByte:      "byte",
	KindShort:     "short",
	KindInt:       "int",
	KindLong:      "long",
	KindTimestamp: "timestamp",
	KindString:    "string",
	KindSymbol:    "symbol",
	KindBinary:    "binary",
	KindList:      "list",
	KindMap:       "map",
	KindDescribed: "described",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one AMQP value. The zero Value is null.
//
// Values are immutable: constructors copy their inputs and accessors for
// lists, maps and binary data return copies.
type Value struct {
	kind  Kind
	u     uint64
	i     int64
	s     string
	b     []byte
	items []Value
	desc  *Descriptor
}

// Pair is one key/value entry of an AMQP map.
type Pair struct {
	Key   Value
	Value Value
}

func Null() Value                 { return Value{} }
func Bool(v bool) Value           { return Value{kind: KindBool, u: boolBit(v)} }
func Ubyte(v uint8) Value         { return Value{kind: KindUbyte, u: uint64(v)} }
func Ushort(v uint16) Value       { return Value{kind: KindUshort, u: uint64(v)} }
func Uint(v uint32) Value         { return Value{kind: KindUint, u: uint64(v)} }
func Ulong(v uint64) Value        { return Value{kind: KindUlong, u: v} }
func Byte(v int8) Value           { return Value{kind: KindByte, i: int64(v)} }
func Short(v int16) Value         { return Value{kind: KindShort, i: int64(v)} }
func Int(v int32) Value           { return Value{kind: KindInt, i: int64(v)} }
func Long(v int64) Value          { return Value{kind: KindLong, i: v} }
func String(v string) Value       { return Value{kind: KindString, s: v} }
func Symbol(v string) Value       { return Value{kind: KindSymbol, s: v} }
func Binary(v []byte) Value       { return Value{kind: KindBinary, b: copyBytes(v)} }
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, i: t.UnixMilli()} }

// List builds a list value holding a copy of items.
func List(items ...Value) Value {
	return Value{kind: KindList, items: copyValues(items)}
}

// Map builds a map value. Entry order is preserved as given.
func Map(pairs ...Pair) Value {
	items := make([]Value, 0, len(pairs)*2)
	for _, p := range pairs {
		items = append(items, p.Key, p.Value)
	}
	return Value{kind: KindMap, items: items}
}

// Described wraps v with descriptor d.
func Described(d Descriptor, v Value) Value {
	return Value{kind: KindDescribed, desc: &d, items: []Value{v}}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.u == 1, true
}

func (v Value) AsUbyte() (uint8, bool) {
	if v.kind != KindUbyte {
		return 0, false
	}
	return uint8(v.u), true
}

func (v Value) AsUshort() (uint16, bool) {
	if v.kind != KindUshort {
		return 0, false
	}
	return uint16(v.u), true
}

func (v Value) AsUint() (uint32, bool) {
	if v.kind != KindUint {
		return 0, false
	}
	return uint32(v.u), true
}

func (v Value) AsUlong() (uint64, bool) {
	if v.kind != KindUlong {
		return 0, false
	}
	return v.u, true
}

// AsUnsigned returns any unsigned integer kind widened to uint64.
func (v Value) AsUnsigned() (uint64, bool) {
	switch v.kind {
	case KindUbyte, KindUshort, KindUint, KindUlong:
		return v.u, true
	}
	return 0, false
}

// AsSigned returns any signed integer kind widened to int64.
func (v Value) AsSigned() (int64, bool) {
	switch v.kind {
	case KindByte, KindShort, KindInt, KindLong:
		return v.i, true
	}
	return 0, false
}

func (v Value) AsTimestamp() (time.Time, bool) {
	if v.kind != KindTimestamp {
		return time.Time{}, false
	}
	return time.UnixMilli(v.i).UTC(), true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsSymbol() (string, bool) {
	if v.kind != KindSymbol {
		return "", false
	}
	return v.s, true
}

func (v Value) AsBinary() ([]byte, bool) {
	if v.kind != KindBinary {
		return nil, false
	}
	return copyBytes(v.b), true
}

// AsList returns a copy of the list elements.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return copyValues(v.items), true
}

// AsMap returns a copy of the map entries in encoded order.
func (v Value) AsMap() ([]Pair, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	pairs := make([]Pair, 0, len(v.items)/2)
	for i := 0; i+1 < len(v.items); i += 2 {
		pairs = append(pairs, Pair{Key: v.items[i], Value: v.items[i+1]})
	}
	return pairs, true
}

// AsDescribed returns the descriptor and the described payload.
func (v Value) AsDescribed() (Descriptor, Value, bool) {
	if v.kind != KindDescribed {
		return Descriptor{}, Value{}, false
	}
	return *v.desc, v.items[0], true
}

// Len returns the element count of a list or the entry count of a map.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.items) / 2
	}
	return 0
}

// Equal reports whether v and o hold the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindUbyte, KindUshort, KindUint, KindUlong:
		return v.u == o.u
	case KindByte, KindShort, KindInt, KindLong, KindTimestamp:
		return v.i == o.i
	case KindString, KindSymbol:
		return v.s == o.s
	case KindBinary:
		return string(v.b) == string(o.b)
	case KindDescribed:
		if !v.desc.Equal(*o.desc) {
			return false
		}
	}
	if len(v.items) != len(o.items) {
		return false
	}
	for i := range v.items {
		if !v.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.u == 1)
	case KindUbyte, KindUshort, KindUint, KindUlong:
		return fmt.Sprintf("%s(%d)", v.kind, v.u)
	case KindByte, KindShort, KindInt, KindLong:
		return fmt.Sprintf("%s(%d)", v.kind, v.i)
	case KindTimestamp:
		return fmt.Sprintf("timestamp(%d)", v.i)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindSymbol:
		return fmt.Sprintf(":%s", v.s)
	case KindBinary:
		return fmt.Sprintf("binary(%x)", v.b)
	case KindDescribed:
		return fmt.Sprintf("described{%s: %s}", v.desc, v.items[0])
	}
	parts := make([]string, len(v.items))
	for i, item := range v.items {
		parts[i] = item.String()
	}
	if v.kind == KindMap {
		entries := make([]string, 0, len(parts)/2)
		for i := 0; i+1 < len(parts); i += 2 {
			entries = append(entries, parts[i]+": "+parts[i+1])
		}
		return "{" + strings.Join(entries, ", ") + "}"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func boolBit(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func copyValues(vs []Value) []Value {
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}
