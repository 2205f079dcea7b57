// Package kwvpd parses and encodes the Keyword VPD format: a simpler
// tag-length-value layout with a single sum-complement checksum, used
// for smaller VPD blobs that don't need IPZ's record/ECC structure.
//
// Grounded on original_source/keyword_vpd_parser.cpp, which this package
// follows field-for-field: large-resource identifier string, skip its
// descriptor, vendor-defined tag, two-byte total length, then
// (name[2], len[1], value[len]) tuples until the total is exhausted.
package kwvpd

import (
	"errors"
	"fmt"

	"github.com/openbmc-ds/vpdkit/cursor"
	"github.com/openbmc-ds/vpdkit/ipzfmt"
)

var (
	// ErrMalformedLength indicates the declared keyword-value region
	// length went negative while consuming keyword entries.
	ErrMalformedLength = errors.New("kwvpd: malformed length")

	// ErrBadChecksum indicates the recomputed checksum does not match
	// the stored checksum byte.
	ErrBadChecksum = errors.New("kwvpd: bad checksum")

	// ErrInvalidTag indicates an expected resource tag byte was missing
	// at its required position.
	ErrInvalidTag = errors.New("kwvpd: invalid tag")
)

// Map is an ordered keyword VPD payload: keyword name -> value, with
// iteration in first-insertion order.
type Map struct {
	order   []string
	byName  map[string][]byte
	descLen int // length of the descriptor string skipped during parse
}

// NewMap returns an empty, ready-to-use Map.
func NewMap() *Map {
	return &Map{byName: make(map[string][]byte)}
}

// Get returns the value for name, or (nil, false) if absent. Absence is
// not an error.
func (m *Map) Get(name string) ([]byte, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// Keywords returns keyword names in first-insertion order.
func (m *Map) Keywords() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Set inserts or overwrites a keyword's value, appending to the
// insertion order only the first time a name is seen.
func (m *Map) Set(name string, value []byte) {
	if _, exists := m.byName[name]; !exists {
		m.order = append(m.order, name)
	}
	m.byName[name] = value
}

// Len reports the number of distinct keywords.
func (m *Map) Len() int { return len(m.order) }

// Parse decodes a Keyword-format VPD blob. Non-fatal conditions (a
// duplicate keyword name) are appended to the returned warnings slice
// rather than aborting the parse, per spec.md §4.4/§9.
func Parse(buf []byte) (*Map, []error, error) {
	var warnings []error
	c := cursor.New(buf)

	startTag, err := c.ReadU8()
	if err != nil {
		return nil, nil, fmt.Errorf("kwvpd: read start tag: %w", err)
	}
	if startTag != ipzfmt.KeywordVPDStartTag {
		return nil, nil, fmt.Errorf("kwvpd: start tag 0x%02x: %w", startTag, ErrInvalidTag)
	}

	descLen, err := c.ReadU16LE()
	if err != nil {
		return nil, nil, fmt.Errorf("kwvpd: read descriptor length: %w", err)
	}
	if _, err := c.ReadBytes(int(descLen)); err != nil {
		return nil, nil, fmt.Errorf("kwvpd: skip descriptor: %w", err)
	}

	checksumStart := c.Pos()

	pairTag, err := c.ReadU8()
	if err != nil {
		return nil, nil, fmt.Errorf("kwvpd: read vendor-defined tag: %w", err)
	}
	if pairTag != ipzfmt.KeywordPairStartTag {
		return nil, nil, fmt.Errorf("kwvpd: vendor-defined tag 0x%02x: %w", pairTag, ErrInvalidTag)
	}

	total, err := c.ReadU16LE()
	if err != nil {
		return nil, nil, fmt.Errorf("kwvpd: read total length: %w", err)
	}
	remaining := int(total)

	m := &Map{byName: make(map[string][]byte), descLen: int(descLen)}

	for remaining > 0 {
		nameBytes, err := c.ReadBytes(ipzfmt.KeywordNameSize)
		if err != nil {
			return nil, nil, fmt.Errorf("kwvpd: read keyword name: %w", err)
		}
		remaining -= ipzfmt.KeywordNameSize
		if remaining < 0 {
			return nil, nil, fmt.Errorf("kwvpd: %w", ErrMalformedLength)
		}

		valLen, err := c.ReadU8()
		if err != nil {
			return nil, nil, fmt.Errorf("kwvpd: read value length: %w", err)
		}
		remaining -= 1
		if remaining < 0 {
			return nil, nil, fmt.Errorf("kwvpd: %w", ErrMalformedLength)
		}

		value, err := c.ReadBytes(int(valLen))
		if err != nil {
			return nil, nil, fmt.Errorf("kwvpd: read value: %w", err)
		}
		remaining -= int(valLen)
		if remaining < 0 {
			return nil, nil, fmt.Errorf("kwvpd: %w", ErrMalformedLength)
		}

		name := string(nameBytes)
		if _, dup := m.byName[name]; dup {
			warnings = append(warnings, fmt.Errorf("kwvpd: duplicate keyword %q, keeping last value", name))
		}
		cp := make([]byte, len(value))
		copy(cp, value)
		m.Set(name, cp)
	}

	checksumEnd := c.Pos() // exclusive: one byte before the end tag

	endTag, err := c.ReadU8()
	if err != nil {
		return nil, nil, fmt.Errorf("kwvpd: read pair end tag: %w", err)
	}
	if endTag != ipzfmt.KeywordPairEndTag {
		return nil, nil, fmt.Errorf("kwvpd: pair end tag 0x%02x: %w", endTag, ErrInvalidTag)
	}

	checksumByte, err := c.ReadU8()
	if err != nil {
		return nil, nil, fmt.Errorf("kwvpd: read checksum: %w", err)
	}

	if got := checksum(buf[checksumStart:checksumEnd]); got != checksumByte {
		return nil, nil, fmt.Errorf("kwvpd: computed 0x%02x, stored 0x%02x: %w", got, checksumByte, ErrBadChecksum)
	}

	lastEndTag, err := c.ReadU8()
	if err != nil {
		return nil, nil, fmt.Errorf("kwvpd: read last end tag: %w", err)
	}
	if lastEndTag != ipzfmt.KeywordVPDLastEndTag {
		return nil, nil, fmt.Errorf("kwvpd: last end tag 0x%02x: %w", lastEndTag, ErrInvalidTag)
	}

	return m, warnings, nil
}

// checksum computes the two's-complement (negated 8-bit sum) of region,
// the value stored at the checksum byte such that sum(region) + checksum
// == 0 mod 256.
func checksum(region []byte) byte {
	var sum byte
	for _, b := range region {
		sum += b
	}
	return byte(-sum)
}

// Encode serializes m back into Keyword VPD wire format. The descriptor
// region is re-emitted as zero bytes of the original length recorded at
// parse time (zero length for a Map built with NewMap), so Encode
// reproduces a parsed blob byte-for-byte only when its descriptor was
// all zeros. EncodeWithDescriptor re-emits caller-supplied descriptor
// bytes for an exact round trip.
func Encode(m *Map) ([]byte, error) {
	return EncodeWithDescriptor(m, make([]byte, m.descLen))
}

// EncodeWithDescriptor is like Encode but lets the caller supply the
// exact descriptor bytes to re-emit (captured from the original blob),
// guaranteeing a byte-exact round trip.
func EncodeWithDescriptor(m *Map, descriptor []byte) ([]byte, error) {
	var body []byte
	for _, name := range m.order {
		val := m.byName[name]
		if len(val) > 255 {
			return nil, fmt.Errorf("kwvpd: value for %q exceeds 255 bytes", name)
		}
		body = append(body, name[0], name[1], byte(len(val)))
		body = append(body, val...)
	}
	if len(body) > 0xFFFF {
		return nil, fmt.Errorf("kwvpd: encoded keyword region exceeds 65535 bytes")
	}

	out := make([]byte, 0, 1+2+len(descriptor)+1+2+len(body)+1+1+1)
	out = append(out, ipzfmt.KeywordVPDStartTag)
	out = append(out, byte(len(descriptor)), byte(len(descriptor)>>8))
	out = append(out, descriptor...)

	checksumStart := len(out)
	out = append(out, ipzfmt.KeywordPairStartTag)
	out = append(out, byte(len(body)), byte(len(body)>>8))
	out = append(out, body...)
	checksumEnd := len(out)

	out = append(out, ipzfmt.KeywordPairEndTag)
	out = append(out, checksum(out[checksumStart:checksumEnd]))
	out = append(out, ipzfmt.KeywordVPDLastEndTag)
	return out, nil
}
