package cache

var _ StateCache = (*nonPersistentStateCache)(nil)

// NewCache creates a new in-memory, non-persistent StateCache. Callers typically wrap this behind per-key
// singleflight coalescing (see chain/state.RPCBackend) so concurrent cold reads of the same key only hit the
// remote RPC once.
func NewCache() StateCache {
	return newNonPersistentStateCache()
}
