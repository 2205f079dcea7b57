package bus

import "errors"

var (
	// ErrObjectNotFound marks an object path that no service implements.
	// resolveService does not return it when the ObjectMapper GetObject
	// call fails or returns an empty map: it falls back to the inventory
	// manager service instead.
	ErrObjectNotFound = errors.New("bus: object not found")

	// ErrPropertyNotFound is returned when a keyword has no corresponding
	// property on the target interface.
	ErrPropertyNotFound = errors.New("bus: property not found")

	// ErrUnexpectedVariantType is returned when a property read back from
	// the bus is not the []byte the inventory keyword interfaces use.
	ErrUnexpectedVariantType = errors.New("bus: unexpected variant type")
)
