package vpdmgr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbmc-ds/vpdkit/bus"
	"github.com/openbmc-ds/vpdkit/config"
	"github.com/openbmc-ds/vpdkit/ecc"
	"github.com/openbmc-ds/vpdkit/eeprom"
	"github.com/openbmc-ds/vpdkit/ipzfmt"
)

func buildBlob(t *testing.T, recordName, keywordName string, value []byte) []byte {
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

func openFixture(t *testing.T, recordName, keywordName string, value []byte) (*eeprom.File, string) {
	t.Helper()
	blob := buildBlob(t, recordName, keywordName, value)
	path := filepath.Join(t.TempDir(), "vpd.bin")
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	f, err := eeprom.Open(path, 0, int64(len(blob)))
	require.NoError(t, err)
	return f, path
}

func newTestManager(t *testing.T, vpdPath string, f *eeprom.File, cache bus.Cache) *Manager {
	t.Helper()
	cfg := &config.System{
		FRUs: map[string]config.FRU{
			vpdPath: {InventoryPath: "/xyz/openbmc_project/inventory/system"},
		},
		BackupRestoreConfigPath: "unused",
	}
	m := New(cfg, cache, nil)
	m.RegisterFile(vpdPath, f)
	return m
}

func TestUpdateKeywordWritesAndFlushes(t *testing.T) {
	f, path := openFixture(t, "VINI", "SN", []byte("OLD-SERIAL  "))
	fake := bus.NewFake()
	m := newTestManager(t, path, f, fake)

	n, err := m.UpdateKeyword(context.Background(), path, KeywordWrite{Record: "VINI", Keyword: "SN", Value: []byte("NEWSERIAL01 ")})
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, Done, m.LastState())

	v, err := m.ReadKeyword(context.Background(), path, "VINI", "SN")
	require.NoError(t, err)
	assert.Equal(t, []byte("NEWSERIAL01 "), v)

	cached, err := fake.ReadKeyword(context.Background(), "/xyz/openbmc_project/inventory/system", bus.RecordInterface("VINI"), "SN")
	require.NoError(t, err)
	assert.Equal(t, []byte("NEWSERIAL01 "), cached)

	require.NoError(t, f.Close())
}

func TestUpdateKeywordUnregisteredPathFails(t *testing.T) {
	f, path := openFixture(t, "VINI", "SN", []byte("OLD-SERIAL  "))
	defer f.Close()
	m := newTestManager(t, path, f, bus.NewFake())

	_, err := m.UpdateKeyword(context.Background(), "/not/registered", KeywordWrite{Record: "VINI", Keyword: "SN", Value: []byte("X")})
	require.Error(t, err)
	assert.Equal(t, Failed, m.LastState())
}

type failingGuard struct{}

func (failingGuard) Acquire(context.Context) error { return assert.AnError }
func (failingGuard) Release(context.Context) error { return nil }

func TestUpdateKeywordGuardAcquireFailureAbortsWrite(t *testing.T) {
	f, path := openFixture(t, "VINI", "SN", []byte("OLD-SERIAL  "))
	defer f.Close()

	cfg := &config.System{FRUs: map[string]config.FRU{path: {InventoryPath: "/x"}}, BackupRestoreConfigPath: "unused"}
	m := New(cfg, bus.NewFake(), failingGuard{})
	m.RegisterFile(path, f)

	_, err := m.UpdateKeyword(context.Background(), path, KeywordWrite{Record: "VINI", Keyword: "SN", Value: []byte("X")})
	require.ErrorIs(t, err, ErrGuardAcquireFailed)
	assert.Equal(t, Failed, m.LastState())

	v, err := m.ReadKeyword(context.Background(), path, "VINI", "SN")
	require.NoError(t, err)
	assert.Equal(t, []byte("OLD-SERIAL  "), v)
}

func TestWriteKeywordLegacyAliasDelegatesToUpdateKeyword(t *testing.T) {
	f, path := openFixture(t, "VINI", "SN", []byte("OLD-SERIAL  "))
	defer f.Close()
	m := newTestManager(t, path, f, bus.NewFake())

	n, err := m.WriteKeyword(context.Background(), path, KeywordWrite{Record: "VINI", Keyword: "SN", Value: []byte("NEW")})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPostCheckMismatchReturnsError(t *testing.T) {
	f, path := openFixture(t, "VINI", "SN", []byte("ACTUALVALUE "))
	defer f.Close()
	m := newTestManager(t, path, f, bus.NewFake())

	err := m.postCheck(f, KeywordWrite{Record: "VINI", Keyword: "SN", Value: []byte("WRONGVALUE  ")})
	require.ErrorIs(t, err, ErrPostCheckMismatch)
}

func TestPostCheckAcceptsZeroPaddedShorterValue(t *testing.T) {
	f, path := openFixture(t, "VINI", "SN", []byte("AB\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	defer f.Close()
	m := newTestManager(t, path, f, bus.NewFake())

	err := m.postCheck(f, KeywordWrite{Record: "VINI", Keyword: "SN", Value: []byte("AB")})
	require.NoError(t, err)
}

func TestReadKeywordMissingKeywordIsError(t *testing.T) {
	f, path := openFixture(t, "VINI", "SN", []byte("OLD-SERIAL  "))
	defer f.Close()
	m := newTestManager(t, path, f, bus.NewFake())

	_, err := m.ReadKeyword(context.Background(), path, "VINI", "PN")
	require.ErrorIs(t, err, ErrKeywordNotFound)
}
