//go:build !unix

package eeprom

import "os"

// mapFile reads the whole file into memory when a shared mmap is not
// available (Windows, or any other non-unix target). Writes are flushed
// back to disk explicitly in Flush rather than via msync.
func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	data := make([]byte, size)
	if size > 0 {
		if _, err := f.ReadAt(data, 0); err != nil {
			return nil, nil, err
		}
	}
	return data, func() error { return nil }, nil
}

const mapped = false
