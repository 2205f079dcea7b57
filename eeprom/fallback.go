package eeprom

import (
	"fmt"
	"os"
)

// Fallback is an EEPROM image accessed through plain ReadAt/WriteAt
// calls, with no memory mapping regardless of platform. Use it when the
// caller wants explicit, non-shared-mapped I/O — e.g. against a network
// filesystem where mmap semantics are unreliable.
type Fallback struct {
	f      *os.File
	offset int64
	size   int64
}

// OpenFallback opens path read-write without mapping it.
func OpenFallback(path string, offset, size int64) (*Fallback, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("eeprom: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("eeprom: stat %s: %w", path, err)
	}
	if info.Size() < offset+size {
		f.Close()
		return nil, fmt.Errorf("eeprom: %s is %d bytes, need %d: %w", path, info.Size(), offset+size, ErrRegionTooSmall)
	}
	return &Fallback{f: f, offset: offset, size: size}, nil
}

// Bytes reads and returns a fresh copy of the VPD region.
func (e *Fallback) Bytes() ([]byte, error) {
	buf := make([]byte, e.size)
	if _, err := e.f.ReadAt(buf, e.offset); err != nil {
		return nil, fmt.Errorf("eeprom: read: %w", err)
	}
	return buf, nil
}

// WriteAt writes p directly to disk at the region-relative offset relOff.
func (e *Fallback) WriteAt(relOff int, p []byte) error {
	if relOff < 0 || int64(relOff)+int64(len(p)) > e.size {
		return fmt.Errorf("eeprom: write [%d,%d) exceeds region of %d bytes: %w", relOff, relOff+len(p), e.size, ErrOutOfRange)
	}
	if _, err := e.f.WriteAt(p, e.offset+int64(relOff)); err != nil {
		return fmt.Errorf("eeprom: write: %w", err)
	}
	return nil
}

// Flush syncs the underlying file descriptor.
func (e *Fallback) Flush() error {
	return e.f.Sync()
}

// Close closes the underlying file.
func (e *Fallback) Close() error {
	return e.f.Close()
}
