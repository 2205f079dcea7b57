//go:build unix

package eeprom

import (
	"errors"
	"os"
	"syscall"
)

// mapFile memory-maps the whole file read-write so in-place writes are
// visible to msync without a copy-back step.
func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		err := syscall.Munmap(data)
		if errors.Is(err, syscall.EINVAL) {
			return nil
		}
		return err
	}
	return data, cleanup, nil
}

const mapped = true
