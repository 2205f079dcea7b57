// Package vpdmgr implements the keyword manager facade (C11): the
// write/read surface external collaborators use, sequencing the reboot
// guard, the redundancy coordinator (C8), and optional pre/post
// consistency checks around every write.
package vpdmgr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/openbmc-ds/vpdkit/bus"
	"github.com/openbmc-ds/vpdkit/config"
	"github.com/openbmc-ds/vpdkit/eeprom"
	"github.com/openbmc-ds/vpdkit/ipz"
	"github.com/openbmc-ds/vpdkit/logging"
	"github.com/openbmc-ds/vpdkit/redundancy"
)

// KeywordWrite names the target of a write: a record and keyword within
// the blob at a configured FRU path, and the new value.
type KeywordWrite struct {
	Record  string
	Keyword string
	Value   []byte
}

// Manager is the public write/read surface. It holds a per-path
// exclusive lock (lock striping), the reboot guard, and the redundancy
// coordinator; eeprom.Files for each FRU path must be registered before
// use via RegisterFile.
type Manager struct {
	cfg   *config.System
	coord *redundancy.Coordinator
	guard Guard

	filesMu sync.RWMutex
	files   map[string]*eeprom.File

	locksMu sync.Mutex
	locks   map[string]*sync.RWMutex

	lastState atomic.Int32
}

// New returns a Manager. guard may be nil, which is equivalent to
// NoopGuard.
func New(cfg *config.System, cache bus.Cache, guard Guard) *Manager {
	if guard == nil {
		guard = NoopGuard{}
	}
	return &Manager{
		cfg:   cfg,
		coord: redundancy.New(cache),
		guard: guard,
		files: make(map[string]*eeprom.File),
		locks: make(map[string]*sync.RWMutex),
	}
}

// RegisterFile associates an already-open eeprom.File with path (a
// primary or redundant EEPROM path as it appears in the System
// configuration).
func (m *Manager) RegisterFile(path string, f *eeprom.File) {
	m.filesMu.Lock()
	defer m.filesMu.Unlock()
	m.files[path] = f
}

func (m *Manager) fileFor(path string) (*eeprom.File, bool) {
	m.filesMu.RLock()
	defer m.filesMu.RUnlock()
	f, ok := m.files[path]
	return f, ok
}

// lockFor returns the striped lock for path, creating it on first use.
func (m *Manager) lockFor(path string) *sync.RWMutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[path]
	if !ok {
		l = &sync.RWMutex{}
		m.locks[path] = l
	}
	return l
}

// LastState reports the State the most recent UpdateKeyword reached.
// It is safe to call from any goroutine and exists for diagnostics and
// tests.
func (m *Manager) LastState() State {
	return State(m.lastState.Load())
}

func (m *Manager) setState(s State) {
	m.lastState.Store(int32(s))
	logging.Debug("vpdmgr: state transition", "state", s.String())
}

// UpdateKeyword writes kw to the blob at vpdPath, replicating to the
// configured redundant EEPROM and the inventory bus cache, guarded by
// the reboot-guard. Lock acquisition order across primary and redundant
// paths is primary-before-redundant, matching
// spec.md §5's "primary before redundant before backup-mirror" ordering.
func (m *Manager) UpdateKeyword(ctx context.Context, vpdPath string, kw KeywordWrite) (int, error) {
	m.setState(Idle)

	fru, err := m.cfg.FRUFor(vpdPath)
	if err != nil {
		m.setState(Failed)
		return 0, fmt.Errorf("vpdmgr: %w", err)
	}

	primaryFile, ok := m.fileFor(vpdPath)
	if !ok {
		m.setState(Failed)
		return 0, fmt.Errorf("vpdmgr: %s: %w", vpdPath, ErrFileNotRegistered)
	}

	var redundantFile *eeprom.File
	if fru.RedundantEEPROM != "" {
		redundantFile, _ = m.fileFor(fru.RedundantEEPROM)
	}

	primaryLock := m.lockFor(vpdPath)
	primaryLock.Lock()
	defer primaryLock.Unlock()

	if redundantFile != nil {
		redundantLock := m.lockFor(fru.RedundantEEPROM)
		redundantLock.Lock()
		defer redundantLock.Unlock()
	}

	if err := m.guard.Acquire(ctx); err != nil {
		m.setState(Failed)
		return 0, fmt.Errorf("vpdmgr: %w: %v", ErrGuardAcquireFailed, err)
	}
	m.setState(Guarded)

	defer func() {
		if err := m.guard.Release(ctx); err != nil {
			logging.Warn("guard release failed", "path", vpdPath, "error", err, "wrapped", ErrGuardReleaseFailed)
		}
	}()

	if redundantFile != nil {
		m.preCheck(primaryFile, redundantFile, kw.Record)
	}

	var redundantBuf []byte
	if redundantFile != nil {
		redundantBuf = redundantFile.Bytes()
	}

	result, err := m.coord.Write(ctx, primaryFile.Bytes(), redundantBuf, fru.InventoryPath, bus.RecordInterface(kw.Record), kw.Record, kw.Keyword, kw.Value)
	if err != nil {
		m.setState(Failed)
		return 0, fmt.Errorf("vpdmgr: %w", err)
	}

	primaryFile.MarkDirty()
	if err := primaryFile.Flush(); err != nil {
		m.setState(Failed)
		return 0, fmt.Errorf("vpdmgr: flush primary: %w", err)
	}
	m.setState(PrimaryWritten)

	if redundantFile != nil {
		if result.RedundantErr == nil {
			redundantFile.MarkDirty()
			if err := redundantFile.Flush(); err != nil {
				logging.Warn("redundant flush failed", "path", fru.RedundantEEPROM, "error", err)
			}
		}
		m.setState(RedundantWritten)
	}

	if result.CacheAttempted && result.CacheErr == nil {
		m.setState(CacheUpdated)
	}

	if err := m.postCheck(primaryFile, kw); err != nil {
		m.setState(Failed)
		return 0, err
	}

	m.setState(Done)
	return result.PrimaryBytesWritten, nil
}

// WriteKeyword is a legacy alias of UpdateKeyword kept for callers
// written against the older name.
func (m *Manager) WriteKeyword(ctx context.Context, vpdPath string, kw KeywordWrite) (int, error) {
	return m.UpdateKeyword(ctx, vpdPath, kw)
}

// preCheck re-parses both blobs' record and logs a divergence warning if
// their content disagrees; it never blocks the write, matching spec.md
// §4.11's "record the divergence in the error channel but proceed".
func (m *Manager) preCheck(primaryFile, redundantFile *eeprom.File, record string) {
	primaryStore, err := ipz.Parse(primaryFile.Bytes())
	if err != nil {
		logging.Warn("pre-check: primary parse failed", "error", err)
		return
	}
	redundantStore, err := ipz.Parse(redundantFile.Bytes())
	if err != nil {
		logging.Warn("pre-check: redundant parse failed", "error", err)
		return
	}

	for _, name := range primaryStore.Keywords(record) {
		primaryVal, ok := primaryStore.Get(record, name)
		if !ok {
			continue
		}
		redundantVal, ok := redundantStore.Get(record, name)
		if ok && string(redundantVal) != string(primaryVal) {
			logging.Warn("pre-check: primary/redundant diverge", "record", record, "keyword", name)
		}
	}
}

// postCheck re-reads the keyword just written and reports ErrPostCheckMismatch
// if it doesn't match kw.Value, matching spec's "integrity errors during
// write's post-check abort the operation" policy. Only the written prefix is
// compared: write.Writer zero-pads a value shorter than the field, so the
// on-disk value legitimately has trailing bytes beyond kw.Value.
func (m *Manager) postCheck(primaryFile *eeprom.File, kw KeywordWrite) error {
	store, err := ipz.Parse(primaryFile.Bytes())
	if err != nil {
		return fmt.Errorf("vpdmgr: post-check: parse failed: %w", err)
	}
	got, ok := store.Get(kw.Record, kw.Keyword)
	if !ok {
		return fmt.Errorf("vpdmgr: post-check: %s.%s vanished: %w", kw.Record, kw.Keyword, ErrPostCheckMismatch)
	}
	if len(got) < len(kw.Value) || string(got[:len(kw.Value)]) != string(kw.Value) {
		return fmt.Errorf("vpdmgr: post-check: %s.%s: %w", kw.Record, kw.Keyword, ErrPostCheckMismatch)
	}
	return nil
}

// ReadKeyword reads keyword's current value from record within the blob
// at vpdPath. Reads take a shared lock so they may proceed concurrently
// with each other, but not while a write holds the exclusive lock.
func (m *Manager) ReadKeyword(ctx context.Context, vpdPath string, record, keyword string) ([]byte, error) {
	primaryFile, ok := m.fileFor(vpdPath)
	if !ok {
		return nil, fmt.Errorf("vpdmgr: %s: %w", vpdPath, ErrFileNotRegistered)
	}

	lock := m.lockFor(vpdPath)
	lock.RLock()
	defer lock.RUnlock()

	store, err := ipz.Parse(primaryFile.Bytes())
	if err != nil {
		return nil, fmt.Errorf("vpdmgr: %w", err)
	}
	v, ok := store.Get(record, keyword)
	if !ok {
		return nil, fmt.Errorf("vpdmgr: %s.%s: %w", record, keyword, ErrKeywordNotFound)
	}
	return v, nil
}
