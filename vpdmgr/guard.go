package vpdmgr

import "context"

// Guard models the system reboot-guard spec.md §4.11/§5 requires around
// a write (acquisition/release "suspends on the service management
// round-trip"). Like config.ActionRunner and bus.Cache, it's an injected
// collaborator rather than something the core implements — on a real
// BMC it typically wraps a systemd unit or a D-Bus reboot-blocker
// service, neither of which is detailed by spec.md beyond this
// interface.
type Guard interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// NoopGuard is a Guard that always succeeds; useful as a default where
// no reboot-guard service is configured, and in tests.
type NoopGuard struct{}

func (NoopGuard) Acquire(context.Context) error { return nil }
func (NoopGuard) Release(context.Context) error { return nil }
