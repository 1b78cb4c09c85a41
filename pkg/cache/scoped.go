package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, so
// separate sessions or tenants never share cache entries.
//
// Example usage:
//
//	// Session-specific keys for per-view collapse state
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:abc123:")
//
//	// Global keys for shared snapshots
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for cached layout geometry.
func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}

// RenderKey generates a prefixed key for cached render graphs.
func (k *ScopedKeyer) RenderKey(snapshotHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(snapshotHash, opts)
}

// SnapshotKey generates a prefixed key for cached snapshot blobs.
func (k *ScopedKeyer) SnapshotKey(snapshotHash string) string {
	return k.prefix + k.inner.SnapshotKey(snapshotHash)
}
