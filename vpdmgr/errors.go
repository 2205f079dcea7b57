package vpdmgr

import "errors"

var (
	// ErrGuardAcquireFailed is returned when the reboot-guard cannot be
	// engaged before a write; the write is not attempted.
	ErrGuardAcquireFailed = errors.New("vpdmgr: guard acquire failed")

	// ErrGuardReleaseFailed is recorded (not returned) when the guard
	// fails to release after an otherwise-successful write.
	ErrGuardReleaseFailed = errors.New("vpdmgr: guard release failed")

	// ErrFileNotRegistered is returned when vpdPath has no eeprom.File
	// registered with the manager.
	ErrFileNotRegistered = errors.New("vpdmgr: eeprom file not registered")

	// ErrKeywordNotFound is returned by ReadKeyword when the record or
	// keyword does not exist in the primary blob.
	ErrKeywordNotFound = errors.New("vpdmgr: keyword not found")

	// ErrPostCheckMismatch is returned by UpdateKeyword when the primary
	// blob's read-back after a write does not match the value just
	// written, per spec's "integrity errors during write's post-check
	// abort the operation" policy.
	ErrPostCheckMismatch = errors.New("vpdmgr: post-check read-back mismatch")
)
