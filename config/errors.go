package config

import "errors"

var (
	// ErrFRUNotFound is returned when a requested EEPROM path has no
	// matching entry in a System's FRU map.
	ErrFRUNotFound = errors.New("config: fru not found")

	// ErrMissingBackupRestoreConfigPath is returned when a System has no
	// BackupRestoreConfigPath set, matching the original's check for the
	// "backupRestoreConfigPath" tag on the system config JSON.
	ErrMissingBackupRestoreConfigPath = errors.New("config: missing backup-restore config path")
)
