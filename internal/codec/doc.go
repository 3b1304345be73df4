// Package codec provides the CBOR encoding configuration used for values
// persisted by the SQLite slot backend.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
// session or device descriptor always produces identical bytes. Types carry
// `json` tags only; fxamacker/cbor falls back to them when `cbor` tags are
// absent, so one tag set names fields for both the file (JSON) and SQLite
// (CBOR) backends.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
