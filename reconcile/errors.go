package reconcile

import "errors"

var (
	// ErrUnknownEndpointKind is returned for an Endpoint with a Kind
	// other than Hardware or Inventory.
	ErrUnknownEndpointKind = errors.New("reconcile: unknown endpoint kind")

	// ErrInvalidRestoreDirection is returned when Restore is asked for
	// a direction other than UseSource or UseDestination.
	ErrInvalidRestoreDirection = errors.New("reconcile: restore direction must be UseSource or UseDestination")

	// ErrKeywordNotFound is returned when a hardware endpoint's VPD blob
	// has no such record/keyword.
	ErrKeywordNotFound = errors.New("reconcile: keyword not found")
)
