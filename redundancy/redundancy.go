// Package redundancy implements the redundancy coordinator (C8): it
// replicates a keyword write across up to three targets — the primary
// EEPROM, an optional redundant EEPROM, and the inventory-bus cache —
// and reports partial failure without rolling the primary back.
package redundancy

import (
	"context"
	"fmt"

	"github.com/openbmc-ds/vpdkit/bus"
	"github.com/openbmc-ds/vpdkit/logging"
	"github.com/openbmc-ds/vpdkit/write"
)

// Result reports the outcome of each of the three targets in a
// coordinated write. PrimaryBytesWritten is always set on success;
// RedundantErr and CacheErr are non-nil only when that target was
// attempted and failed — neither failure is fatal to the write as a
// whole.
type Result struct {
	PrimaryBytesWritten   int
	RedundantAttempted    bool
	RedundantBytesWritten int
	RedundantErr          error
	CacheAttempted        bool
	CacheErr              error
}

// Coordinator sequences a keyword write across primary, redundant, and
// cache targets.
type Coordinator struct {
	writer *write.Writer
	cache  bus.Cache
}

// New returns a Coordinator that pushes cache updates through cache.
// cache may be nil, in which case the cache step is skipped entirely
// (useful for callers that reconcile the bus separately).
func New(cache bus.Cache) *Coordinator {
	return &Coordinator{writer: write.New(), cache: cache}
}

// Write overwrites keywordName within recordName in primary, and in
// redundant if non-nil, then pushes the new value to objectPath's
// interfaceName property on the inventory bus. primary and redundant are
// the byte slices backing each EEPROM's mapped region (e.g. from
// eeprom.File.Bytes()); the caller is responsible for flushing them.
//
// A primary write failure aborts the whole operation. A redundant or
// cache failure is recorded in the returned Result but does not unwind
// the primary write, matching spec: "the primary is not rolled back;
// the caller decides recovery" and "the cache will be reconciled on
// next full collection".
func (c *Coordinator) Write(ctx context.Context, primary, redundant []byte, objectPath, interfaceName, recordName, keywordName string, newValue []byte) (Result, error) {
	var result Result

	n, err := c.writer.WriteKeyword(primary, recordName, keywordName, newValue)
	if err != nil {
		return result, fmt.Errorf("redundancy: %w: %v", ErrPrimaryWriteFailed, err)
	}
	result.PrimaryBytesWritten = n

	if redundant != nil {
		result.RedundantAttempted = true
		rn, err := c.writer.WriteKeyword(redundant, recordName, keywordName, newValue)
		if err != nil {
			result.RedundantErr = err
			logging.Warn("redundant write failed", "record", recordName, "keyword", keywordName, "error", err)
		} else {
			result.RedundantBytesWritten = rn
		}
	}

	if c.cache != nil {
		result.CacheAttempted = true
		if err := c.cache.UpdateKeyword(ctx, objectPath, interfaceName, keywordName, newValue); err != nil {
			result.CacheErr = err
			logging.Warn("cache update failed", "objectPath", objectPath, "keyword", keywordName, "error", err)
		}
	}

	return result, nil
}
