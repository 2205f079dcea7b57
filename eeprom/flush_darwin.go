//go:build darwin

package eeprom

import "golang.org/x/sys/unix"

// flushDirty syncs the whole mapping on Darwin: msync there requires the
// address to match the original mmap base, so sub-slices can't be passed
// directly, and the kernel only writes pages that are actually dirty.
func flushDirty(fd int, data []byte, ranges []dirtyRange) error {
	if len(ranges) == 0 {
		return nil
	}
	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		return err
	}
	return unix.Fsync(fd)
}
