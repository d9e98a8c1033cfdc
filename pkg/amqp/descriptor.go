package amqp

import "fmt"

// Descriptor identifies the semantic type of a described value. It is
// either a numeric code or a symbolic name.
type Descriptor struct {
	code     uint64
	symbol   string
	symbolic bool
}

// Code returns a numeric descriptor.
func Code(code uint64) Descriptor { return Descriptor{code: code} }

// Symbolic returns a symbolic descriptor such as "amqp:header:list".
func Symbolic(name string) Descriptor { return Descriptor{symbol: name, symbolic: true} }

func (d Descriptor) IsSymbolic() bool { return d.symbolic }

// Code returns the numeric code. Symbolic descriptors naming a registered
// composite resolve to that composite's code.
func (d Descriptor) Code() (uint64, bool) {
	if !d.symbolic {
		return d.code, true
	}
	if c, ok := compositeBySymbol[d.symbol]; ok {
		return uint64(c), true
	}
	return 0, false
}

func (d Descriptor) Symbol() (string, bool) {
	return d.symbol, d.symbolic
}

// Matches reports whether d designates composite c, by code or by name.
func (d Descriptor) Matches(c Composite) bool {
	code, ok := d.Code()
	return ok && code == uint64(c)
}

func (d Descriptor) Equal(o Descriptor) bool {
	return d == o
}

func (d Descriptor) String() string {
	if d.symbolic {
		return d.symbol
	}
	return fmt.Sprintf("0x%02x", d.code)
}

func (d Descriptor) value() Value {
	if d.symbolic {
		return Symbol(d.symbol)
	}
	return Ulong(d.code)
}

// Composite is the descriptor code of a composite type defined by the
// AMQP 1.0 messaging layer.
type Composite uint64

const (
	CompositeHeader                Composite = 0x70
	CompositeDeliveryAnnotations   Composite = 0x71
	CompositeMessageAnnotations    Composite = 0x72
	CompositeProperties            Composite = 0x73
	CompositeApplicationProperties Composite = 0x74
	CompositeData                  Composite = 0x75
	CompositeSequence              Composite = 0x76
	CompositeValue                 Composite = 0x77
	CompositeFooter                Composite = 0x78
)

var compositeSymbols = map[Composite]string{
	CompositeHeader:                "amqp:header:list",
	CompositeDeliveryAnnotations:   "amqp:delivery-annotations:map",
	CompositeMessageAnnotations:    "amqp:message-annotations:map",
	CompositeProperties:            "amqp:properties:list",
	CompositeApplicationProperties: "amqp:application-properties:map",
	CompositeData:                  "amqp:data:binary",
	CompositeSequence:              "amqp:amqp-sequence:list",
	CompositeValue:                 "amqp:amqp-value:*",
	CompositeFooter:                "amqp:footer:map",
}

var compositeBySymbol = func() map[string]Composite {
	m := make(map[string]Composite, len(compositeSymbols))
	for c, s := range compositeSymbols {
		m[s] = c
	}
	return m
}()

// LookupComposite returns the composite registered for code.
func LookupComposite(code uint64) (Composite, bool) {
	c := Composite(code)
	_, ok := compositeSymbols[c]
	return c, ok
}

// Descriptor returns the numeric descriptor for c.
func (c Composite) Descriptor() Descriptor { return Code(uint64(c)) }

func (c Composite) String() string {
	if s, ok := compositeSymbols[c]; ok {
		return s
	}
	return fmt.Sprintf("composite(0x%02x)", uint64(c))
}
