package write

import "errors"

var (
	// ErrRecordNotFound is returned when the target record name is not
	// present in the blob's VTOC.
	ErrRecordNotFound = errors.New("write: record not found")

	// ErrKeywordNotFound is returned when the target keyword is not
	// present within its record.
	ErrKeywordNotFound = errors.New("write: keyword not found")

	// ErrValueTooLong is returned when the new value is longer than the
	// keyword's existing stored payload; resizing is not supported
	// because VTOC offsets would have to shift.
	ErrValueTooLong = errors.New("write: value too long")

	// ErrEccUpdateFailed is returned when the ECC codec cannot
	// recompute the record's check bytes after a mutation.
	ErrEccUpdateFailed = errors.New("write: ecc update failed")
)
