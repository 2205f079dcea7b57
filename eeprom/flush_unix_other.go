//go:build unix && !linux && !freebsd && !darwin

package eeprom

import "golang.org/x/sys/unix"

// flushDirty covers the remaining unix targets (netbsd, openbsd, solaris,
// etc.): sync the whole mapping, same rationale as Darwin.
func flushDirty(fd int, data []byte, ranges []dirtyRange) error {
	if len(ranges) == 0 {
		return nil
	}
	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		return err
	}
	return unix.Fsync(fd)
}
