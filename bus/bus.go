// Package bus defines the narrow inventory-bus collaborator the core
// accepts at construction, plus a github.com/godbus/dbus/v5-backed
// adapter that implements it against an OpenBMC-style object-path and
// per-record property-interface model.
package bus

import "context"

// Cache is the inventory-bus surface the core needs: pushing a keyword
// write into the inventory D-Bus cache after an EEPROM write succeeds,
// and reading a keyword back for reconciliation. Nothing else about the
// bus connection is exposed, so callers can construct a *vpdmgr.Manager
// with a fake in tests without a real bus.
type Cache interface {
	// UpdateKeyword sets keyword's value on interfaceName at objectPath.
	UpdateKeyword(ctx context.Context, objectPath, interfaceName, keyword string, value []byte) error

	// ReadKeyword returns keyword's current value from interfaceName at
	// objectPath.
	ReadKeyword(ctx context.Context, objectPath, interfaceName, keyword string) ([]byte, error)
}
