package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbmc-ds/vpdkit/bus"
	"github.com/openbmc-ds/vpdkit/config"
	"github.com/openbmc-ds/vpdkit/ecc"
	"github.com/openbmc-ds/vpdkit/ipz"
	"github.com/openbmc-ds/vpdkit/ipzfmt"
)

func buildFixture(t *testing.T, recordName, keywordName string, value []byte) []byte {
	t.Helper()

	var body []byte
	body = append(body, []byte(ipzfmt.RecordTypeKeyword)...)
	body = append(body, byte(len(recordName)))
	body = append(body, []byte(recordName)...)
	body = append(body, keywordName[0], keywordName[1], byte(len(value)))
	body = append(body, value...)
	body = append(body, ipzfmt.SmallResourceEndTag)

	recFrame := []byte{ipzfmt.LargeResourceTag, byte(len(body)), byte(len(body) >> 8)}
	recFrame = append(recFrame, body...)

	vtocBody := []byte(ipzfmt.RecordTypeKeyword)
	vtocBody = append(vtocBody, byte(len(ipzfmt.VTOCRecordName)))
	vtocBody = append(vtocBody, []byte(ipzfmt.VTOCRecordName)...)
	vtocBody = append(vtocBody, ipzfmt.VTOCKeywordName[0], ipzfmt.VTOCKeywordName[1], 12)
	ptOff := len(vtocBody)
	vtocBody = append(vtocBody, make([]byte, 12)...)
	vtocBody = append(vtocBody, ipzfmt.SmallResourceEndTag)

	vtocFrame := []byte{ipzfmt.LargeResourceTag, byte(len(vtocBody)), byte(len(vtocBody) >> 8)}
	vtocFrame = append(vtocFrame, vtocBody...)

	header := make([]byte, ipzfmt.VHDRHeaderEnd)
	header[17] = ipzfmt.LargeResourceTag

	buf := append([]byte(nil), header...)
	buf = append(buf, vtocFrame...)

	recOff := len(buf)
	buf = append(buf, recFrame...)
	recLen := len(recFrame) - 3
	eccOff := len(buf)
	buf = append(buf, 0, 0)

	ptStart := ipzfmt.VHDRHeaderEnd + 3 + ptOff
	e := buf[ptStart : ptStart+12]
	copy(e[0:4], recordName)
	e[4], e[5] = byte(recOff), byte(recOff>>8)
	e[6], e[7] = byte(recLen), byte(recLen>>8)
	e[8], e[9] = byte(eccOff), byte(eccOff>>8)
	e[10], e[11] = 2, 0

	require.NoError(t, ecc.Update(buf, recOff+3, recLen, eccOff, 2))
	return buf
}

func backupMap(entry config.BackupRestoreEntry) *config.BackupRestoreMap {
	return &config.BackupRestoreMap{Entries: []config.BackupRestoreEntry{entry}}
}

func TestReadReportsMismatchBetweenHardwareEndpoints(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("AAAAAAAAAAAA"))
	destination := buildFixture(t, "VSYS", "BR", []byte("BBBBBBBBBBBB"))

	r := New(bus.NewFake())
	mismatches, err := r.Read(context.Background(), backupMap(config.BackupRestoreEntry{
		SourceRecord: "VSYS", SourceKeyword: "BR",
		DestinationRecord: "VSYS", DestinationKeyword: "BR",
	}), HardwareEndpoint(source), HardwareEndpoint(destination))
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.True(t, mismatches[0].Mismatched)
	assert.Equal(t, []byte("AAAAAAAAAAAA"), mismatches[0].SourceValue)
	assert.Equal(t, []byte("BBBBBBBBBBBB"), mismatches[0].DestinationValue)
}

func TestReadReportsMatchWhenEqual(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("SAMEVALUE   "))
	destination := buildFixture(t, "VSYS", "BR", []byte("SAMEVALUE   "))

	r := New(bus.NewFake())
	mismatches, err := r.Read(context.Background(), backupMap(config.BackupRestoreEntry{
		SourceRecord: "VSYS", SourceKeyword: "BR",
		DestinationRecord: "VSYS", DestinationKeyword: "BR",
	}), HardwareEndpoint(source), HardwareEndpoint(destination))
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.False(t, mismatches[0].Mismatched)
}

func TestRestoreUseSourceCopiesOntoDestination(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("SOURCEVAL   "))
	destination := buildFixture(t, "VSYS", "BR", []byte("OLDVALUE    "))

	r := New(bus.NewFake())
	err := r.Restore(context.Background(), backupMap(config.BackupRestoreEntry{
		SourceRecord: "VSYS", SourceKeyword: "BR",
		DestinationRecord: "VSYS", DestinationKeyword: "BR",
	}), HardwareEndpoint(source), HardwareEndpoint(destination), UseSource)
	require.NoError(t, err)

	store, err := ipz.Parse(destination)
	require.NoError(t, err)
	v, ok := store.Get("VSYS", "BR")
	require.True(t, ok)
	assert.Equal(t, []byte("SOURCEVAL   "), v)
}

func TestRestoreRejectsNonDirectionalChoice(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("X"))
	destination := buildFixture(t, "VSYS", "BR", []byte("X"))

	r := New(bus.NewFake())
	err := r.Restore(context.Background(), backupMap(config.BackupRestoreEntry{}), HardwareEndpoint(source), HardwareEndpoint(destination), Skip)
	require.ErrorIs(t, err, ErrInvalidRestoreDirection)
}

func TestManufacturingResetOnlyAppliesToGatedEntries(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("CURRENTVAL  "))
	destination := buildFixture(t, "VSYS", "BR", []byte("CURRENTVAL  "))

	m := &config.BackupRestoreMap{Entries: []config.BackupRestoreEntry{
		{SourceRecord: "VSYS", SourceKeyword: "BR", DestinationRecord: "VSYS", DestinationKeyword: "BR", IsManufactureResetRequired: true, DefaultValue: config.ByteArray("DEFAULTVAL  ")},
		{SourceRecord: "VSYS", SourceKeyword: "BR", DestinationRecord: "VSYS", DestinationKeyword: "BR", IsManufactureResetRequired: false, DefaultValue: config.ByteArray("SHOULDNOTSET")},
	}}

	r := New(bus.NewFake())
	require.NoError(t, r.ManufacturingReset(context.Background(), m, HardwareEndpoint(source), HardwareEndpoint(destination)))

	store, err := ipz.Parse(source)
	require.NoError(t, err)
	v, ok := store.Get("VSYS", "BR")
	require.True(t, ok)
	assert.Equal(t, []byte("DEFAULTVAL  "), v)
}

func TestInteractiveFixAppliesUseValueToBothSides(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("SOURCEVAL   "))
	destination := buildFixture(t, "VSYS", "BR", []byte("DESTVALUE   "))

	r := New(bus.NewFake())
	choose := func(m Mismatch) (Choice, []byte) { return UseValue, []byte("CHOSENVALUE ") }

	err := r.InteractiveFix(context.Background(), backupMap(config.BackupRestoreEntry{
		SourceRecord: "VSYS", SourceKeyword: "BR",
		DestinationRecord: "VSYS", DestinationKeyword: "BR",
	}), HardwareEndpoint(source), HardwareEndpoint(destination), choose)
	require.NoError(t, err)

	srcStore, err := ipz.Parse(source)
	require.NoError(t, err)
	v, ok := srcStore.Get("VSYS", "BR")
	require.True(t, ok)
	assert.Equal(t, []byte("CHOSENVALUE "), v)

	dstStore, err := ipz.Parse(destination)
	require.NoError(t, err)
	v, ok = dstStore.Get("VSYS", "BR")
	require.True(t, ok)
	assert.Equal(t, []byte("CHOSENVALUE "), v)
}

func TestInteractiveFixSkipsNonMismatchedEntries(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("SAMEVALUE   "))
	destination := buildFixture(t, "VSYS", "BR", []byte("SAMEVALUE   "))

	r := New(bus.NewFake())
	called := false
	choose := func(m Mismatch) (Choice, []byte) { called = true; return Skip, nil }

	err := r.InteractiveFix(context.Background(), backupMap(config.BackupRestoreEntry{
		SourceRecord: "VSYS", SourceKeyword: "BR",
		DestinationRecord: "VSYS", DestinationKeyword: "BR",
	}), HardwareEndpoint(source), HardwareEndpoint(destination), choose)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestRestoreReplicatesOntoRedundantEepromAndCache(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("SOURCEVAL   "))
	destination := buildFixture(t, "VSYS", "BR", []byte("OLDVALUE    "))
	destRedundant := buildFixture(t, "VSYS", "BR", []byte("OLDVALUE    "))

	fake := bus.NewFake()
	r := New(fake)
	destEp := RedundantHardwareEndpoint(destination, destRedundant, "/xyz/openbmc_project/inventory/system", bus.RecordInterface("VSYS"))

	err := r.Restore(context.Background(), backupMap(config.BackupRestoreEntry{
		SourceRecord: "VSYS", SourceKeyword: "BR",
		DestinationRecord: "VSYS", DestinationKeyword: "BR",
	}), HardwareEndpoint(source), destEp, UseSource)
	require.NoError(t, err)

	store, err := ipz.Parse(destination)
	require.NoError(t, err)
	v, ok := store.Get("VSYS", "BR")
	require.True(t, ok)
	assert.Equal(t, []byte("SOURCEVAL   "), v)

	redundantStore, err := ipz.Parse(destRedundant)
	require.NoError(t, err)
	rv, ok := redundantStore.Get("VSYS", "BR")
	require.True(t, ok)
	assert.Equal(t, []byte("SOURCEVAL   "), rv)

	cached, err := fake.ReadKeyword(context.Background(), "/xyz/openbmc_project/inventory/system", bus.RecordInterface("VSYS"), "BR")
	require.NoError(t, err)
	assert.Equal(t, []byte("SOURCEVAL   "), cached)
}

func TestReadAgainstInventoryEndpointUsesCache(t *testing.T) {
	source := buildFixture(t, "VSYS", "BR", []byte("HARDWAREVAL "))
	fake := bus.NewFake()
	require.NoError(t, fake.UpdateKeyword(context.Background(), "/xyz/openbmc_project/inventory/system", bus.RecordInterface("VSYS"), "BR", []byte("HARDWAREVAL ")))

	r := New(fake)
	mismatches, err := r.Read(context.Background(), backupMap(config.BackupRestoreEntry{
		SourceRecord: "VSYS", SourceKeyword: "BR",
		DestinationRecord: "VSYS", DestinationKeyword: "BR",
	}), HardwareEndpoint(source), InventoryEndpoint("/xyz/openbmc_project/inventory/system", bus.RecordInterface("VSYS")))
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.False(t, mismatches[0].Mismatched)
}
