package index

import "sync/atomic"

// Holder owns the live snapshot reference. Readers load the current
// snapshot without locking; rebuilds install a replacement with a
// single atomic swap, so a query sees either the old index or the new
// one in its entirety, never a mix.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns a holder seeded with an empty snapshot so callers
// can query before the first ingestion completes.
func NewHolder(model string, dim int) *Holder {
	h := &Holder{}
	h.current.Store(NewSnapshot(model, dim))
	return h
}

// Load returns the live snapshot
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Swap installs a new snapshot as the live index
func (h *Holder) Swap(s *Snapshot) {
	h.current.Store(s)
}
