// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the serialization settings shared by every
// cryptobench package that persists data.
//
// JSON is the external format: CLI --json output, run plans, and
// exported reports. CBOR is the storage format: evaluation bodies in
// the result store and the audit manifest that gets hashed. The CBOR
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same logical value always produces the same bytes, which the audit
// digest depends on.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Stored bodies can additionally be compressed:
//
//	blob, err := codec.Pack(value, codec.CompressionZstd)
//	err = codec.Unpack(blob, &value)
//
// # Struct Tag Rules
//
// Types that are only ever stored carry `cbor` tags. Types that also
// appear in JSON output carry `json` tags only: fxamacker/cbor falls
// back to `json` tags when `cbor` tags are absent, so one tag names
// the field in both formats. Never put both tags on the same field.
package codec
