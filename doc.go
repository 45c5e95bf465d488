// Package toon implements TOON (Token-Oriented Object Notation), a
// line-oriented, indentation-based textual encoding of the JSON data
// model.
//
// The package is split into a streaming Lexer (bytes to Tokens), a
// streaming Decoder (Tokens to Events), and a streaming Encoder (caller
// Emit* calls to text), mirroring a StAX-style pull parser rather than a
// tree builder. Decoder and Encoder never buffer a whole document beyond
// what a single array's format decision requires; DecodeValue and
// EncodeValue build a generic any tree on top of the event surface for
// callers who want a tree instead of a pull interface.
//
// A document's array values may take one of four surface syntaxes:
// inline, tabular, list, or list-of-objects, chosen by the Encoder and
// recognized automatically by the Decoder.
package toon
