// Package eeprom provides random-access, byte-addressable access to a
// VPD EEPROM image: open a file at a configured starting offset, read
// its VPD-sized region, mutate it in place, and flush changes back to
// disk. Package write and package redundancy operate on the byte slice
// this package exposes.
package eeprom

import (
	"fmt"
	"os"
)

// File is an EEPROM image backed by an open file, starting at a
// configured byte offset within it. On unix targets the region is a true
// shared memory mapping so in-place writes are visible to msync; on
// other targets it is a private copy flushed back with WriteAt+Sync.
type File struct {
	f       *os.File
	region  []byte // the full mapped/copied file contents
	cleanup func() error
	offset  int64
	size    int64
	tracker *tracker
}

// Open opens path read-write, maps (or copies) the whole file, and
// exposes the region [offset, offset+size) through Bytes and WriteAt.
func Open(path string, offset, size int64) (*File, error) {
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

	region, cleanup, err := mapFile(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("eeprom: map %s: %w", path, err)
	}

	return &File{
		f:       f,
		region:  region,
		cleanup: cleanup,
		offset:  offset,
		size:    size,
		tracker: newTracker(),
	}, nil
}

// Bytes returns the VPD region as a byte slice. Mutating it in place and
// calling Flush persists the change; the caller must not retain the
// slice past Close.
func (e *File) Bytes() []byte {
	return e.region[e.offset : e.offset+e.size]
}

// WriteAt overwrites len(p) bytes within the VPD region starting at the
// region-relative offset relOff, marking the affected range dirty.
func (e *File) WriteAt(relOff int, p []byte) error {
	if relOff < 0 || int64(relOff)+int64(len(p)) > e.size {
		return fmt.Errorf("eeprom: write [%d,%d) exceeds region of %d bytes: %w", relOff, relOff+len(p), e.size, ErrOutOfRange)
	}
	abs := int(e.offset) + relOff
	copy(e.region[abs:abs+len(p)], p)
	e.tracker.add(abs, len(p))
	return nil
}

// MarkDirty marks the whole VPD region dirty. Collaborators such as
// write.Writer mutate the slice returned by Bytes() directly rather than
// going through WriteAt, so Flush would otherwise see no dirty ranges to
// persist; callers that hand Bytes() to such a collaborator must call
// MarkDirty before Flush.
func (e *File) MarkDirty() {
	e.tracker.add(int(e.offset), int(e.size))
}

// Flush persists dirty ranges to disk: msync+fdatasync when the region
// is a true mapping, or a direct WriteAt+Sync otherwise.
func (e *File) Flush() error {
	if !mapped {
		if _, err := e.f.WriteAt(e.region, 0); err != nil {
			return fmt.Errorf("eeprom: flush: %w", err)
		}
		e.tracker.reset()
		return e.f.Sync()
	}

	ranges := e.tracker.coalesce()
	if len(ranges) == 0 {
		return nil
	}
	if err := flushDirty(int(e.f.Fd()), e.region, ranges); err != nil {
		return fmt.Errorf("eeprom: flush: %w", err)
	}
	e.tracker.reset()
	return nil
}

// Close releases the mapping/copy and closes the underlying file. Flush
// must be called first if any writes should be persisted.
func (e *File) Close() error {
	cleanupErr := e.cleanup()
	closeErr := e.f.Close()
	if cleanupErr != nil {
		return fmt.Errorf("eeprom: close: %w", cleanupErr)
	}
	return closeErr
}
