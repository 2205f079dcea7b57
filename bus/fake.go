package bus

import (
	"context"
	"fmt"
)

// Fake is an in-memory Cache for tests; no real bus connection is
// required to exercise C8/C9/C11.
type Fake struct {
	values map[string][]byte

	// FailUpdate, when non-nil, is returned by UpdateKeyword instead of
	// performing the write, to simulate a bus-side failure.
	FailUpdate error
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{values: make(map[string][]byte)}
}

func fakeKey(objectPath, interfaceName, keyword string) string {
	return fmt.Sprintf("%s\x00%s\x00%s", objectPath, interfaceName, keyword)
}

// UpdateKeyword implements Cache.
func (f *Fake) UpdateKeyword(_ context.Context, objectPath, interfaceName, keyword string, value []byte) error {
	if f.FailUpdate != nil {
		return f.FailUpdate
	}
	stored := append([]byte(nil), value...)
	f.values[fakeKey(objectPath, interfaceName, keyword)] = stored
	return nil
}

// ReadKeyword implements Cache.
func (f *Fake) ReadKeyword(_ context.Context, objectPath, interfaceName, keyword string) ([]byte, error) {
	v, ok := f.values[fakeKey(objectPath, interfaceName, keyword)]
	if !ok {
		return nil, fmt.Errorf("bus: fake read %s %s.%s: %w", objectPath, interfaceName, keyword, ErrPropertyNotFound)
	}
	return v, nil
}
