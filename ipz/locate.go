package ipz

import (
	"fmt"

	"github.com/openbmc-ds/vpdkit/cursor"
	"github.com/openbmc-ds/vpdkit/ipzfmt"
)

// LocateKeyword walks the record framed at recordOffset and reports the
// absolute byte range, within buf, of keywordName's value. found is
// false (with a nil error) if the record has no such keyword; err is
// non-nil only for malformed framing.
func LocateKeyword(buf []byte, recordOffset uint16, keywordName string) (valueOff, valueLen int, found bool, err error) {
	off := int(recordOffset)
	c := cursor.New(buf[off:])

	tag, err := c.ReadU8()
	if err != nil {
		return 0, 0, false, fmt.Errorf("ipz: locate %q: read frame tag: %w", keywordName, err)
	}
	if tag != ipzfmt.LargeResourceTag {
		return 0, 0, false, fmt.Errorf("ipz: locate %q: frame tag 0x%02x: %w", keywordName, tag, ErrRecordLengthMismatch)
	}
	bodyLen, err := c.ReadU16LE()
	if err != nil {
		return 0, 0, false, fmt.Errorf("ipz: locate %q: read record length: %w", keywordName, err)
	}

	bodyStart := off + c.Pos()
	bodyEnd := bodyStart + int(bodyLen)
	if bodyEnd > len(buf) {
		return 0, 0, false, fmt.Errorf("ipz: locate %q: record body extends past buffer: %w", keywordName, cursor.ErrOutOfBounds)
	}
	body := cursor.New(buf[bodyStart:bodyEnd])

	for {
		b, err := body.PeekU8()
		if err != nil {
			break
		}
		if b == ipzfmt.SmallResourceEndTag {
			break
		}

		nameBytes, err := body.ReadBytes(ipzfmt.KeywordNameSize)
		if err != nil {
			return 0, 0, false, fmt.Errorf("ipz: locate %q: read keyword name: %w", keywordName, err)
		}

		var valLen int
		if nameBytes[0] == ipzfmt.LargeKeywordPrefix {
			l, err := body.ReadU16LE()
			if err != nil {
				return 0, 0, false, fmt.Errorf("ipz: locate %q: %w", keywordName, ErrMalformedLength)
			}
			valLen = int(l)
		} else {
			l, err := body.ReadU8()
			if err != nil {
				return 0, 0, false, fmt.Errorf("ipz: locate %q: read keyword length: %w", keywordName, err)
			}
			valLen = int(l)
		}

		valStart := bodyStart + body.Pos()
		if _, err := body.ReadBytes(valLen); err != nil {
			return 0, 0, false, fmt.Errorf("ipz: locate %q: %w", keywordName, ErrMalformedLength)
		}

		if string(nameBytes) == keywordName {
			return valStart, valLen, true, nil
		}
	}

	return 0, 0, false, nil
}
