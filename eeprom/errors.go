package eeprom

import "errors"

var (
	// ErrOutOfRange is returned when a read or write would fall outside
	// the configured VPD region of the file.
	ErrOutOfRange = errors.New("eeprom: out of range")

	// ErrRegionTooSmall is returned when the underlying file is smaller
	// than the configured offset+size.
	ErrRegionTooSmall = errors.New("eeprom: file smaller than configured region")
)
