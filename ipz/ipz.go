// Package ipz implements the IPZ (record/keyword) VPD binary format:
// header validation, VTOC traversal, per-record ECC verification, and an
// in-memory Store indexing the parsed records and keywords.
package ipz

import (
	"fmt"

	"github.com/openbmc-ds/vpdkit/cursor"
	"github.com/openbmc-ds/vpdkit/ecc"
	"github.com/openbmc-ds/vpdkit/ipzfmt"
)

// vtocEntrySize is the on-wire size of one VTOC entry: recordName[4],
// recordOffset[2], recordLength[2], eccOffset[2], eccLength[2].
const vtocEntrySize = ipzfmt.VTOCEntrySize

// vhdrBodyStart/vhdrBodyEnd bound the fixed VHDR body; the VTOC record's
// own large-resource tag begins at vhdrBodyEnd.
const (
	vhdrBodyStart = 19
	vhdrBodyEnd   = ipzfmt.VHDRHeaderEnd
)

// VTOCEntry describes one record's location and ECC region, as carried
// in the VTOC record's PT keyword.
type VTOCEntry struct {
	RecordName   [4]byte
	RecordOffset uint16
	RecordLength uint16
	EccOffset    uint16
	EccLength    uint16
}

// Keyword is one parsed keyword within a record: its raw two-byte wire
// name, the printable Store-facing name (transformed for large/numeric
// keywords), and its value.
type Keyword struct {
	Raw   [2]byte
	Name  string
	Value []byte
}

// Record is a named, ordered collection of keywords.
type Record struct {
	Name     [4]byte
	Keywords []Keyword

	byName map[string]int
}

// Get returns a keyword's value by its printable name.
func (r *Record) Get(keyword string) ([]byte, bool) {
	i, ok := r.byName[keyword]
	if !ok {
		return nil, false
	}
	return r.Keywords[i].Value, true
}

// KeywordNames returns keyword names in parse order.
func (r *Record) KeywordNames() []string {
	out := make([]string, len(r.Keywords))
	for i, kw := range r.Keywords {
		out[i] = kw.Name
	}
	return out
}

// Store is the in-memory indexed view of a parsed IPZ blob (C6).
type Store struct {
	order   []string
	records map[string]*Record
	vtoc    []VTOCEntry
	raw     []byte // defensive copy of the buffer this Store was parsed from
}

// Get looks up a keyword's value by (record, keyword). Absence is
// reported via the boolean, not an error.
func (s *Store) Get(record, keyword string) ([]byte, bool) {
	r, ok := s.records[record]
	if !ok {
		return nil, false
	}
	return r.Get(keyword)
}

// Records returns record names in VTOC order.
func (s *Store) Records() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Keywords returns a record's keyword names in parse order, or nil if
// the record does not exist.
func (s *Store) Keywords(record string) []string {
	r, ok := s.records[record]
	if !ok {
		return nil
	}
	return r.KeywordNames()
}

// VTOC returns the parsed table-of-contents entries, in declaration
// order, for callers (C7/C8) that need a record's offsets.
func (s *Store) VTOC() []VTOCEntry {
	out := make([]VTOCEntry, len(s.vtoc))
	copy(out, s.vtoc)
	return out
}

// Encode returns the buffer this Store was parsed from (Testable
// Property 3: encode(parse(B)) == B for any B that parsed without
// single-symbol ECC correction). The Store is a read-only index; actual
// mutation happens on the buffer directly via package write, so encoding
// is simply handing back the bytes that produced this index.
func (s *Store) Encode() ([]byte, error) {
	out := make([]byte, len(s.raw))
	copy(out, s.raw)
	return out, nil
}

// transformKeywordName converts a raw two-byte wire keyword name into
// its Store-facing printable form: large keywords (name[0] == '#') become
// "PD_"+name[1], numeric keywords (name[0] is a digit) become "N_"+name,
// everything else passes through unchanged.
func transformKeywordName(raw [2]byte) string {
	switch {
	case raw[0] == ipzfmt.LargeKeywordPrefix:
		return fmt.Sprintf("PD_%c", raw[1])
	case raw[0] >= '0' && raw[0] <= '9':
		return fmt.Sprintf("N_%c%c", raw[0], raw[1])
	default:
		return string(raw[:])
	}
}

// ParseVTOC validates the header and decodes the VTOC record's PT
// keyword into entries, without parsing or ECC-checking any data
// record. Callers that only need to locate one record (package write)
// use this instead of the full Parse, which validates every record.
func ParseVTOC(buf []byte) ([]VTOCEntry, error) {
	if len(buf) < vhdrBodyEnd+1 || buf[17] != ipzfmt.LargeResourceTag {
		return nil, ErrMissingHeader
	}
	if buf[vhdrBodyEnd] != ipzfmt.LargeResourceTag {
		return nil, ErrMissingVtoc
	}

	vtocName, vtocKeywords, err := parseRecordAt(buf, vhdrBodyEnd)
	if err != nil {
		return nil, fmt.Errorf("ipz: parse vtoc: %w", err)
	}
	if string(vtocName[:]) != ipzfmt.VTOCRecordName {
		return nil, ErrMissingVtoc
	}

	var ptValue []byte
	for _, kw := range vtocKeywords {
		if kw.Name == ipzfmt.VTOCKeywordName {
			ptValue = kw.Value
			break
		}
	}
	if ptValue == nil {
		return nil, ErrMissingVtoc
	}
	if len(ptValue)%vtocEntrySize != 0 {
		return nil, fmt.Errorf("ipz: %w: PT length %d not a multiple of %d", ErrMalformedLength, len(ptValue), vtocEntrySize)
	}

	n := len(ptValue) / vtocEntrySize
	entries := make([]VTOCEntry, n)
	for i := 0; i < n; i++ {
		e := ptValue[i*vtocEntrySize : (i+1)*vtocEntrySize]
		var entry VTOCEntry
		copy(entry.RecordName[:], e[0:4])
		entry.RecordOffset = le16(e[4:6])
		entry.RecordLength = le16(e[6:8])
		entry.EccOffset = le16(e[8:10])
		entry.EccLength = le16(e[10:12])
		entries[i] = entry
	}
	return entries, nil
}

// Parse decodes an IPZ-format VPD blob into a Store.
func Parse(buf []byte) (*Store, error) {
	entries, err := ParseVTOC(buf)
	if err != nil {
		return nil, err
	}

	store := &Store{
		records: make(map[string]*Record, len(entries)),
		vtoc:    entries,
		raw:     append([]byte(nil), buf...),
	}

	for _, entry := range entries {
		recordName := string(entry.RecordName[:])

		if err := ecc.Verify(buf, int(entry.RecordOffset)+3, int(entry.RecordLength), int(entry.EccOffset), int(entry.EccLength)); err != nil {
			return nil, fmt.Errorf("ipz: record %q: %w: %v", recordName, ErrEccCheckFailed, err)
		}

		gotName, keywords, err := parseRecordAt(buf, int(entry.RecordOffset))
		if err != nil {
			return nil, fmt.Errorf("ipz: record %q: %w", recordName, err)
		}
		if frameLen := le16(buf[int(entry.RecordOffset)+1:]); frameLen != entry.RecordLength {
			return nil, fmt.Errorf("ipz: record %q: frame length %d, VTOC length %d: %w", recordName, frameLen, entry.RecordLength, ErrRecordLengthMismatch)
		}
		if gotName != entry.RecordName {
			return nil, fmt.Errorf("ipz: record %q: %w", recordName, ErrRtMismatch)
		}

		rec := &Record{Name: entry.RecordName, Keywords: keywords, byName: make(map[string]int, len(keywords))}
		for i, kw := range keywords {
			rec.byName[kw.Name] = i
		}
		store.records[recordName] = rec
		store.order = append(store.order, recordName)
	}

	return store, nil
}

// parseRecordAt reads one record's large-resource framing and keyword
// list starting at offset off within buf, returning the record name (the
// RT keyword's value) and its keywords. The first keyword must be RT and
// its value must equal the record name.
func parseRecordAt(buf []byte, off int) ([4]byte, []Keyword, error) {
	var recordName [4]byte
	c := cursor.New(buf[off:])

	tag, err := c.ReadU8()
	if err != nil {
		return recordName, nil, fmt.Errorf("read frame tag: %w", err)
	}
	if tag != ipzfmt.LargeResourceTag {
		return recordName, nil, fmt.Errorf("frame tag 0x%02x: %w", tag, ErrRecordLengthMismatch)
	}
	bodyLen, err := c.ReadU16LE()
	if err != nil {
		return recordName, nil, fmt.Errorf("read record length: %w", err)
	}

	bodyStart := c.Pos()
	bodyEnd := bodyStart + int(bodyLen)
	if bodyEnd > c.Len() {
		return recordName, nil, fmt.Errorf("record body extends past buffer: %w", cursor.ErrOutOfBounds)
	}
	body := cursor.New(buf[off+bodyStart : off+bodyEnd])

	var keywords []Keyword
	for {
		b, err := body.PeekU8()
		if err != nil {
			// End of body reached without a terminator; treat as the
			// implicit end of the keyword list.
			break
		}
		if b == ipzfmt.SmallResourceEndTag {
			_, _ = body.ReadU8()
			break
		}

		nameBytes, err := body.ReadBytes(ipzfmt.KeywordNameSize)
		if err != nil {
			return recordName, nil, fmt.Errorf("read keyword name: %w", err)
		}
		var raw [2]byte
		copy(raw[:], nameBytes)

		var valLen int
		if raw[0] == ipzfmt.LargeKeywordPrefix {
			l, err := body.ReadU16LE()
			if err != nil {
				return recordName, nil, fmt.Errorf("%w: %v", ErrMalformedLength, err)
			}
			valLen = int(l)
		} else {
			l, err := body.ReadU8()
			if err != nil {
				return recordName, nil, fmt.Errorf("read keyword length: %w", err)
			}
			valLen = int(l)
		}

		value, err := body.ReadBytes(valLen)
		if err != nil {
			return recordName, nil, fmt.Errorf("%w: keyword %q: %v", ErrMalformedLength, string(raw[:]), err)
		}
		cp := make([]byte, len(value))
		copy(cp, value)

		if len(keywords) == 0 {
			if string(raw[:]) != ipzfmt.RecordTypeKeyword {
				return recordName, nil, ErrRtMismatch
			}
			copy(recordName[:], cp)
		}

		keywords = append(keywords, Keyword{Raw: raw, Name: transformKeywordName(raw), Value: cp})
	}

	if len(keywords) == 0 {
		return recordName, nil, ErrRtMismatch
	}

	return recordName, keywords, nil
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
