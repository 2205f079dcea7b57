package bus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	objectMapperService = "xyz.openbmc_project.ObjectMapper"
	objectMapperPath    = "/xyz/openbmc_project/object_mapper"
	objectMapperIface   = "xyz.openbmc_project.ObjectMapper"

	propertiesIface = "org.freedesktop.DBus.Properties"

	inventoryManagerService = "xyz.openbmc_project.Inventory.Manager"
)

// DBusCache implements Cache over a real system bus connection. Object
// paths are resolved to a owning service via the ObjectMapper, matching
// dbusUtility::getObjectMap; property access then goes through the
// standard org.freedesktop.DBus.Properties Get/Set methods, matching
// dbusUtility::readDbusProperty / writeDbusProperty.
type DBusCache struct {
	conn *dbus.Conn
}

// NewDBusCache connects to the system bus.
func NewDBusCache() (*DBusCache, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("bus: connect system bus: %w", err)
	}
	return &DBusCache{conn: conn}, nil
}

// Close releases the underlying bus connection.
func (c *DBusCache) Close() error {
	return c.conn.Close()
}

// resolveService looks up the service name implementing objectPath on
// interfaceName, falling back to the well-known inventory manager
// service if the mapper has nothing registered yet (e.g. during early
// boot before the object is claimed).
func (c *DBusCache) resolveService(ctx context.Context, objectPath, interfaceName string) (string, error) {
	mapper := c.conn.Object(objectMapperService, dbus.ObjectPath(objectMapperPath))

	var result map[string][]string
	call := mapper.CallWithContext(ctx, objectMapperIface+".GetObject", 0, objectPath, []string{interfaceName})
	if call.Err != nil {
		return inventoryManagerService, nil
	}
	if err := call.Store(&result); err != nil || len(result) == 0 {
		return inventoryManagerService, nil
	}

	for service := range result {
		return service, nil
	}
	return inventoryManagerService, fmt.Errorf("bus: %w: %s", ErrObjectNotFound, objectPath)
}

// UpdateKeyword implements Cache.
func (c *DBusCache) UpdateKeyword(ctx context.Context, objectPath, interfaceName, keyword string, value []byte) error {
	service, err := c.resolveService(ctx, objectPath, interfaceName)
	if err != nil {
		return err
	}

	obj := c.conn.Object(service, dbus.ObjectPath(objectPath))
	call := obj.CallWithContext(ctx, propertiesIface+".Set", 0, interfaceName, keyword, dbus.MakeVariant(value))
	if call.Err != nil {
		return fmt.Errorf("bus: set %s %s.%s: %w", objectPath, interfaceName, keyword, call.Err)
	}
	return nil
}

// ReadKeyword implements Cache.
func (c *DBusCache) ReadKeyword(ctx context.Context, objectPath, interfaceName, keyword string) ([]byte, error) {
	service, err := c.resolveService(ctx, objectPath, interfaceName)
	if err != nil {
		return nil, err
	}

	obj := c.conn.Object(service, dbus.ObjectPath(objectPath))
	call := obj.CallWithContext(ctx, propertiesIface+".Get", 0, interfaceName, keyword)
	if call.Err != nil {
		return nil, fmt.Errorf("bus: get %s %s.%s: %w", objectPath, interfaceName, keyword, call.Err)
	}

	var variant dbus.Variant
	if err := call.Store(&variant); err != nil {
		return nil, fmt.Errorf("bus: decode %s %s.%s: %w", objectPath, interfaceName, keyword, err)
	}

	value, ok := variant.Value().([]byte)
	if !ok {
		return nil, fmt.Errorf("bus: %s %s.%s: %w", objectPath, interfaceName, keyword, ErrUnexpectedVariantType)
	}
	return value, nil
}
