//go:build linux || freebsd

package eeprom

import "golang.org/x/sys/unix"

// flushDirty msyncs each coalesced dirty range individually; Linux and
// FreeBSD's msync accepts sub-mapping slices directly.
func flushDirty(fd int, data []byte, ranges []dirtyRange) error {
	for _, r := range ranges {
		end := r.off + r.len
		if end > len(data) {
			end = len(data)
		}
		if r.off >= end {
			continue
		}
		if err := unix.Msync(data[r.off:end], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return unix.Fdatasync(fd)
}
