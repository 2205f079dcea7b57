package ipz

import "errors"

var (
	// ErrMissingHeader is returned when the large-resource tag at offset
	// 17 is absent from the blob.
	ErrMissingHeader = errors.New("ipz: missing header")

	// ErrMissingVtoc is returned when the VTOC tag or its PT keyword
	// cannot be located from the VHDR body.
	ErrMissingVtoc = errors.New("ipz: missing vtoc")

	// ErrRtMismatch is returned when a record's first keyword is not RT
	// or its value does not equal the record name.
	ErrRtMismatch = errors.New("ipz: RT keyword mismatch")

	// ErrMalformedLength is returned when a large keyword's declared
	// length exceeds the bytes remaining in its record.
	ErrMalformedLength = errors.New("ipz: malformed length")

	// ErrEccCheckFailed is returned when a record's ECC cannot be
	// verified or repaired.
	ErrEccCheckFailed = errors.New("ipz: ecc check failed")

	// ErrRecordLengthMismatch is returned when a record's large-resource
	// framing is wrong: its frame tag is not 0x84, or its length field
	// disagrees with its VTOC-declared length.
	ErrRecordLengthMismatch = errors.New("ipz: record length mismatch")
)
