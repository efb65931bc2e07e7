// Package export hands finished union-find results to consumers.
//
// Three consumers are provided:
//
//	Stream    lazy (original id, component id) pairs over a finished set
//	Exporter  parallel write-back through a caller-supplied WriteFunc
//	Writer    a compact binary result file, optionally LZ4 or ZSTD compressed
//
// The component id of a node is the dense id of its set representative.
//
// # File Format
//
//	[magic "HUCC"][version u8][codec u8]
//	block*: [uncompressed size u32 LE][compressed size u32 LE][payload]
//
// A compressed size of 0 marks a block stored raw. Each payload is a run of
// whole records: varint(original id) uvarint(component id).
package export
