// Package ipzfmt holds the shared wire-format constants for IPZ and
// Keyword-format VPD blobs: resource tags, field widths, and well-known
// names. It has no parsing logic of its own; ipz, kwvpd, and write all
// depend on it so the magic bytes live in exactly one place.
package ipzfmt

const (
	// RecordNameSize is the width in bytes of a record name (e.g. "VINI").
	RecordNameSize = 4

	// KeywordNameSize is the width in bytes of a keyword name (e.g. "PN").
	KeywordNameSize = 2

	// VHDRHeaderEnd is the byte offset of the large-resource tag that
	// introduces VTOC, immediately following the fixed VHDR body.
	VHDRHeaderEnd = 61

	// LargeResourceTag marks the start of a large-resource record
	// (VHDR, VTOC, and every data record).
	LargeResourceTag = 0x84

	// SmallResourceEndTag terminates the keyword list inside a record.
	SmallResourceEndTag = 0x78

	// KeywordVPDStartTag marks the start of a Keyword-format blob.
	KeywordVPDStartTag = 0x82

	// KeywordPairStartTag introduces the vendor-defined keyword-value
	// region of a Keyword-format blob.
	KeywordPairStartTag = 0x84

	// KeywordPairEndTag marks the end of the keyword-value region.
	KeywordPairEndTag = 0x79

	// KeywordVPDLastEndTag is the final byte of a well-formed Keyword-format
	// blob, following the checksum byte.
	KeywordVPDLastEndTag = 0x78

	// LargeKeywordPrefix is the first byte of a "large" keyword name
	// (two-byte length, up to 65535-byte payload).
	LargeKeywordPrefix = '#'

	// RecordTypeKeyword is the name of the first keyword in every record;
	// its value must equal the record's name.
	RecordTypeKeyword = "RT"

	// VTOCRecordName names the record that holds the table of contents.
	VTOCRecordName = "VTOC"

	// VTOCKeywordName is VTOC's single keyword, carrying the packed entries.
	VTOCKeywordName = "PT"

	// VTOCEntrySize is the encoded width of one VTOC entry:
	// recordName[4] + recordOffset[2] + recordLength[2] + eccOffset[2] + eccLength[2].
	VTOCEntrySize = RecordNameSize + 2 + 2 + 2 + 2
)

// WellKnownRecords lists record names the system is known to encounter.
// The set is not closed: unknown records are still parsed, just not
// specially interpreted by anything in this module.
var WellKnownRecords = []string{
	"VINI", "OPFR", "OSYS", "VSYS", "VSBP", "VCEN", "VTOC", "VHDR", "VNDR", "VMSC", "VRTN",
}
