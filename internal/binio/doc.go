// Package binio holds the primitive encoders and decoders shared by the
// catalog decoder and the skeleton binary encoder.
//
// Writer and Reader speak the big-endian skeleton layout: 7-bit varints,
// IEEE-754 floats, length+1 prefixed strings, hex-parsed colors and
// range-checked short arrays. LE is a bounds-checked little-endian cursor
// over an in-memory blob, used for the catalog's bucket, key and entry
// tables.
package binio
