// Package reconcile implements the backup/restore reconciler (C9): a
// declarative map of keyword pairs that can be read for mismatches,
// restored in bulk from one side, reset to manufacturing defaults, or
// fixed entry-by-entry under caller control.
package reconcile

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openbmc-ds/vpdkit/bus"
	"github.com/openbmc-ds/vpdkit/config"
	"github.com/openbmc-ds/vpdkit/ipz"
	"github.com/openbmc-ds/vpdkit/redundancy"
)

// Mismatch reports one backup-map entry's current state on both sides.
type Mismatch struct {
	Entry            config.BackupRestoreEntry
	SourceValue      []byte
	DestinationValue []byte
	Mismatched       bool
}

// Choice is the closed set of per-entry interactive-fix decisions,
// replacing the original CLI's direct std::cin read with an injected
// decision function so the core stays free of terminal I/O.
type Choice int

const (
	Skip Choice = iota
	UseSource
	UseDestination
	UseValue
)

// ChooseFunc decides how to resolve one mismatch. value is only
// consulted when the returned choice is UseValue.
type ChooseFunc func(m Mismatch) (choice Choice, value []byte)

// Reconciler applies a config.BackupRestoreMap against a pair of
// endpoints.
type Reconciler struct {
	cache bus.Cache
	coord *redundancy.Coordinator
}

// New returns a Reconciler that reads/writes Inventory endpoints through
// cache, and that routes every Hardware-endpoint write through a
// redundancy.Coordinator built on the same cache, so a Restore,
// ManufacturingReset, or InteractiveFix against a Hardware endpoint
// replicates onto that endpoint's redundant EEPROM and pushes the bus
// cache (C7+C8), exactly like vpdmgr's primary-write path.
func New(cache bus.Cache) *Reconciler {
	return &Reconciler{cache: cache, coord: redundancy.New(cache)}
}

func (r *Reconciler) readValue(ctx context.Context, ep Endpoint, record, keyword string) ([]byte, error) {
	switch ep.Kind {
	case Hardware:
		store, err := ipz.Parse(ep.Buf)
		if err != nil {
			return nil, fmt.Errorf("reconcile: read %s.%s: %w", record, keyword, err)
		}
		v, ok := store.Get(record, keyword)
		if !ok {
			return nil, fmt.Errorf("reconcile: %s.%s: %w", record, keyword, ErrKeywordNotFound)
		}
		return v, nil
	case Inventory:
		return r.cache.ReadKeyword(ctx, ep.ObjectPath, ep.InterfaceName, keyword)
	default:
		return nil, fmt.Errorf("reconcile: read: %w", ErrUnknownEndpointKind)
	}
}

func (r *Reconciler) writeValue(ctx context.Context, ep Endpoint, record, keyword string, value []byte) error {
	switch ep.Kind {
	case Hardware:
		coord := r.coord
		if ep.ObjectPath == "" {
			// No cache target configured for this endpoint: use a
			// coordinator with the cache leg disabled so writeValue
			// doesn't push to an empty object path.
			coord = redundancy.New(nil)
		}
		_, err := coord.Write(ctx, ep.Buf, ep.Redundant, ep.ObjectPath, ep.InterfaceName, record, keyword, value)
		if err != nil {
			return fmt.Errorf("reconcile: write %s.%s: %w", record, keyword, err)
		}
		return nil
	case Inventory:
		return r.cache.UpdateKeyword(ctx, ep.ObjectPath, ep.InterfaceName, keyword, value)
	default:
		return fmt.Errorf("reconcile: write: %w", ErrUnknownEndpointKind)
	}
}

// Read reads both sides of every entry in m and reports whether they
// match. An entry whose value cannot be read on either side is reported
// as mismatched with the unavailable side left nil; reconciliation of
// the remaining entries continues.
func (r *Reconciler) Read(ctx context.Context, m *config.BackupRestoreMap, source, destination Endpoint) ([]Mismatch, error) {
	mismatches := make([]Mismatch, 0, len(m.Entries))

	for _, entry := range m.Entries {
		srcVal, srcErr := r.readValue(ctx, source, entry.SourceRecord, entry.SourceKeyword)
		dstVal, dstErr := r.readValue(ctx, destination, entry.DestinationRecord, entry.DestinationKeyword)

		if srcErr != nil || dstErr != nil {
			mismatches = append(mismatches, Mismatch{Entry: entry, SourceValue: srcVal, DestinationValue: dstVal, Mismatched: true})
			continue
		}

		mismatches = append(mismatches, Mismatch{
			Entry:            entry,
			SourceValue:      srcVal,
			DestinationValue: dstVal,
			Mismatched:       !bytes.Equal(srcVal, dstVal),
		})
	}

	return mismatches, nil
}

// Restore copies every entry's value from one side onto the other. dir
// must be UseSource or UseDestination.
func (r *Reconciler) Restore(ctx context.Context, m *config.BackupRestoreMap, source, destination Endpoint, dir Choice) error {
	if dir != UseSource && dir != UseDestination {
		return ErrInvalidRestoreDirection
	}

	for _, entry := range m.Entries {
		switch dir {
		case UseSource:
			v, err := r.readValue(ctx, source, entry.SourceRecord, entry.SourceKeyword)
			if err != nil {
				return err
			}
			if err := r.writeValue(ctx, destination, entry.DestinationRecord, entry.DestinationKeyword, v); err != nil {
				return err
			}
		case UseDestination:
			v, err := r.readValue(ctx, destination, entry.DestinationRecord, entry.DestinationKeyword)
			if err != nil {
				return err
			}
			if err := r.writeValue(ctx, source, entry.SourceRecord, entry.SourceKeyword, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// ManufacturingReset writes each entry's DefaultValue to both sides, but
// only for entries with IsManufactureResetRequired set, matching the
// original's "isManufactureResetRequired" gate in cleanSystemVpd.
func (r *Reconciler) ManufacturingReset(ctx context.Context, m *config.BackupRestoreMap, source, destination Endpoint) error {
	for _, entry := range m.Entries {
		if !entry.IsManufactureResetRequired || len(entry.DefaultValue) == 0 {
			continue
		}
		if err := r.writeValue(ctx, source, entry.SourceRecord, entry.SourceKeyword, entry.DefaultValue); err != nil {
			return err
		}
		if err := r.writeValue(ctx, destination, entry.DestinationRecord, entry.DestinationKeyword, entry.DefaultValue); err != nil {
			return err
		}
	}
	return nil
}

// InteractiveFix reads both sides, then, for every mismatched entry,
// asks choose how to resolve it and applies the result.
func (r *Reconciler) InteractiveFix(ctx context.Context, m *config.BackupRestoreMap, source, destination Endpoint, choose ChooseFunc) error {
	mismatches, err := r.Read(ctx, m, source, destination)
	if err != nil {
		return err
	}

	for _, mm := range mismatches {
		if !mm.Mismatched {
			continue
		}

		choice, value := choose(mm)
		switch choice {
		case Skip:
			continue
		case UseSource:
			if err := r.writeValue(ctx, destination, mm.Entry.DestinationRecord, mm.Entry.DestinationKeyword, mm.SourceValue); err != nil {
				return err
			}
		case UseDestination:
			if err := r.writeValue(ctx, source, mm.Entry.SourceRecord, mm.Entry.SourceKeyword, mm.DestinationValue); err != nil {
				return err
			}
		case UseValue:
			if err := r.writeValue(ctx, source, mm.Entry.SourceRecord, mm.Entry.SourceKeyword, value); err != nil {
				return err
			}
			if err := r.writeValue(ctx, destination, mm.Entry.DestinationRecord, mm.Entry.DestinationKeyword, value); err != nil {
				return err
			}
		}
	}

	return nil
}
