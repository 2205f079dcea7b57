// Package write implements the keyword writer (C7): locate a keyword's
// byte range in an IPZ blob, bounds-check the new payload, write it in
// place, and recompute the affected record's ECC.
package write

import (
	"fmt"

	"github.com/openbmc-ds/vpdkit/ecc"
	"github.com/openbmc-ds/vpdkit/ipz"
)

// Writer mutates an IPZ blob in place. It holds no state of its own;
// every call re-walks the VTOC so the blob may be mutated between calls.
type Writer struct{}

// New returns a Writer.
func New() *Writer {
	return &Writer{}
}

// WriteKeyword overwrites keywordName's payload within recordName with
// newValue and recomputes that record's ECC. It returns the number of
// bytes written. buf is mutated in place; the caller is responsible for
// flushing it back to the EEPROM file.
func (w *Writer) WriteKeyword(buf []byte, recordName, keywordName string, newValue []byte) (int, error) {
	entries, err := ipz.ParseVTOC(buf)
	if err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}

	var entry *ipz.VTOCEntry
	for i := range entries {
		if string(entries[i].RecordName[:]) == recordName {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return 0, fmt.Errorf("write: record %q: %w", recordName, ErrRecordNotFound)
	}

	valueOff, valueLen, found, err := ipz.LocateKeyword(buf, entry.RecordOffset, keywordName)
	if err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("write: record %q keyword %q: %w", recordName, keywordName, ErrKeywordNotFound)
	}

	if len(newValue) > valueLen {
		return 0, fmt.Errorf("write: record %q keyword %q: %d > %d: %w", recordName, keywordName, len(newValue), valueLen, ErrValueTooLong)
	}

	n := copy(buf[valueOff:valueOff+valueLen], newValue)
	for i := valueOff + n; i < valueOff+valueLen; i++ {
		buf[i] = 0x00
	}

	dataOff := int(entry.RecordOffset) + 3
	if err := ecc.Update(buf, dataOff, int(entry.RecordLength), int(entry.EccOffset), int(entry.EccLength)); err != nil {
		return 0, fmt.Errorf("write: record %q: %w: %v", recordName, ErrEccUpdateFailed, err)
	}

	return n, nil
}
