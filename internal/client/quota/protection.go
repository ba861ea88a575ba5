package quota

import "context"

// ProtectionChecker reports whether a key holds data that must not be evicted
type ProtectionChecker interface {
	IsProtected(ctx context.Context, key string) (bool, error)
}

// ProtectionFunc adapts a function to ProtectionChecker
type ProtectionFunc func(ctx context.Context, key string) (bool, error)

// IsProtected calls f
func (f ProtectionFunc) IsProtected(ctx context.Context, key string) (bool, error) {
	return f(ctx, key)
}

// DirtyChecker is satisfied by docs.Repository
type DirtyChecker interface {
	IsDirty(ctx context.Context, key string) (bool, error)
}

// PendingChecker is satisfied by queue.Queue
type PendingChecker interface {
	HasPendingKey(ctx context.Context, key string) (bool, error)
}

// UnsyncedProtection protects keys whose document is dirty or that still have
// a queued operation
type UnsyncedProtection struct {
	Docs  DirtyChecker
	Queue PendingChecker
}

// IsProtected reports whether key has unsynced data
func (p UnsyncedProtection) IsProtected(ctx context.Context, key string) (bool, error) {
	dirty, err := p.Docs.IsDirty(ctx, key)
	if err != nil {
		return false, err
	}
	if dirty {
		return true, nil
	}
	return p.Queue.HasPendingKey(ctx, key)
}
