// Package detect classifies a VPD blob as IPZ, Keyword, or Invalid by
// examining its magic bytes, without parsing the rest of the blob.
package detect

import (
	"errors"
	"fmt"

	"github.com/openbmc-ds/vpdkit/ipzfmt"
)

// ErrEmptyBuffer is returned when the buffer is too short to carry the
// magic bytes this package inspects (fewer than 18 bytes).
var ErrEmptyBuffer = errors.New("detect: empty buffer")

// Kind identifies which VPD wire format a blob uses.
type Kind int

const (
	// Invalid means neither IPZ nor Keyword magic bytes were found.
	Invalid Kind = iota
	// Ipz is the record/keyword format with per-record ECC.
	Ipz
	// Keyword is the simpler TLV format with a sum-complement checksum.
	Keyword
)

func (k Kind) String() string {
	switch k {
	case Ipz:
		return "Ipz"
	case Keyword:
		return "Keyword"
	default:
		return "Invalid"
	}
}

// minHeaderBytes is the smallest buffer Detect can classify: it must be
// able to inspect byte 17, the IPZ header's large-resource tag.
const minHeaderBytes = 18

// Detect classifies buf per spec.md §4.3:
//   - byte 17 == 0x84 -> Ipz
//   - else byte 0 == 0x82 -> Keyword
//   - else -> Invalid
func Detect(buf []byte) (Kind, error) {
	if len(buf) < minHeaderBytes {
		return Invalid, fmt.Errorf("detect: buffer has %d bytes: %w", len(buf), ErrEmptyBuffer)
	}
	if buf[17] == ipzfmt.LargeResourceTag {
		return Ipz, nil
	}
	if buf[0] == ipzfmt.KeywordVPDStartTag {
		return Keyword, nil
	}
	return Invalid, nil
}
