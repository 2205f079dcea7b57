package redundancy

import "errors"

// ErrPrimaryWriteFailed is returned when the primary EEPROM write fails;
// this is the only failure mode that aborts the coordinated write, since
// the primary is the source of truth.
var ErrPrimaryWriteFailed = errors.New("redundancy: primary write failed")
