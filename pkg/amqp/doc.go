// Package amqp owns the generic AMQP 1.0 value model and its binary codec.
//
// Ownership boundary:
// - Value tagged union and Descriptor
// - composite descriptor registry shared by all composite sections
// - encode/decode of the primitive, compound and described encodings
//
// Decimal, char, uuid and array encodings are not supported.
package amqp
