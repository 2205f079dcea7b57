// Package config holds the opaque, JSON-loaded configuration the core
// is handed at construction: per-FRU EEPROM placement and hot-plug
// class, and the declarative backup/restore mapping consumed by
// package reconcile. The core treats every field here as opaque data;
// nothing in this package parses VPD or touches a bus.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ByteArray is a byte slice that marshals as a JSON array of numbers
// (e.g. [1,2,3]) rather than encoding/json's default base64 string, to
// match the wire shape of the original's BinaryVector default values.
type ByteArray []byte

// MarshalJSON implements json.Marshaler.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("config: defaultValue: %w", err)
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// Action is an opaque command descriptor invoked by an injected
// ActionRunner — never by the core directly — matching spec.md §6's
// "pre/post/postFail action descriptors for GPIO/command hooks (invoked
// by external collaborators, not by the core)".
type Action struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// ActionRunner executes a FRU's Pre/Post/PostFail action. Implementations
// typically shell out to a GPIO or power-control command; the core never
// does so itself.
type ActionRunner interface {
	Run(ctx context.Context, action Action) error
}

// FRU describes one EEPROM-backed field-replaceable unit.
type FRU struct {
	InventoryPath        string  `json:"inventoryPath"`
	Offset               int64   `json:"offset"`
	RedundantEEPROM      string  `json:"redundantEeprom,omitempty"`
	PowerOffOnly         bool    `json:"powerOffOnly,omitempty"`
	ReplaceableAtRuntime bool    `json:"replaceableAtRuntime,omitempty"`
	ReplaceableAtStandby bool    `json:"replaceableAtStandby,omitempty"`
	PreAction            *Action `json:"preAction,omitempty"`
	PostAction           *Action `json:"postAction,omitempty"`
	PostFailAction       *Action `json:"postFailAction,omitempty"`
}

// System is the top-level per-BMC configuration document: the set of
// known FRUs keyed by EEPROM path, plus the path to the backup/restore
// mapping document.
type System struct {
	FRUs                    map[string]FRU `json:"frus"`
	BackupRestoreConfigPath string         `json:"backupRestoreConfigPath"`
}

// LoadSystem reads and parses a system configuration document from path.
func LoadSystem(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load system config: %w", err)
	}

	var sys System
	if err := json.Unmarshal(data, &sys); err != nil {
		return nil, fmt.Errorf("config: parse system config: %w", err)
	}
	if sys.BackupRestoreConfigPath == "" {
		return nil, fmt.Errorf("config: %s: %w", path, ErrMissingBackupRestoreConfigPath)
	}
	return &sys, nil
}

// FRUFor returns the FRU entry for eepromPath, checking both primary
// paths and, failing that, any FRU whose RedundantEEPROM matches —
// mirroring json_utility.hpp's getOffset() fallback to the redundant
// path's owning entry.
func (s *System) FRUFor(eepromPath string) (FRU, error) {
	if fru, ok := s.FRUs[eepromPath]; ok {
		return fru, nil
	}
	for _, fru := range s.FRUs {
		if fru.RedundantEEPROM == eepromPath {
			return fru, nil
		}
	}
	return FRU{}, fmt.Errorf("config: %s: %w", eepromPath, ErrFRUNotFound)
}

// BackupRestoreEndpoint names one side of a backup/restore relationship:
// its physical EEPROM path and, optionally, its inventory object path.
type BackupRestoreEndpoint struct {
	HardwarePath  string `json:"hardwarePath"`
	InventoryPath string `json:"inventoryPath,omitempty"`
}

// BackupRestoreEntry maps one keyword on the source side to one keyword
// on the destination side, field-for-field as the original's backupMap
// array entries.
type BackupRestoreEntry struct {
	SourceRecord               string    `json:"sourceRecord"`
	SourceKeyword              string    `json:"sourceKeyword"`
	DestinationRecord          string    `json:"destinationRecord"`
	DestinationKeyword         string    `json:"destinationKeyword"`
	DefaultValue               ByteArray `json:"defaultValue,omitempty"`
	IsManufactureResetRequired bool      `json:"isManufactureResetRequired,omitempty"`
}

// BackupRestoreMap is the reconciler's declarative mapping document.
type BackupRestoreMap struct {
	Source      BackupRestoreEndpoint `json:"source"`
	Destination BackupRestoreEndpoint `json:"destination"`
	Entries     []BackupRestoreEntry  `json:"backupMap"`
}

// LoadBackupRestoreMap reads and parses a backup/restore mapping
// document from path.
func LoadBackupRestoreMap(path string) (*BackupRestoreMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load backup-restore map: %w", err)
	}

	var m BackupRestoreMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parse backup-restore map: %w", err)
	}
	return &m, nil
}
