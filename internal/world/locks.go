package world

import "sync/atomic"

// ClaimSet is a bank of one-word exclusive claims, one per arena slot.
// A claim is never held across a frame stage: a lane either completes its
// operation and releases, or rolls back and releases. There is no blocking
// acquire.
type ClaimSet struct {
	words []atomic.Uint32
}

func NewClaimSet(n int) *ClaimSet {
	return &ClaimSet{words: make([]atomic.Uint32, n)}
}

// TryAcquire claims slot i, returning false if another lane holds it.
func (c *ClaimSet) TryAcquire(i int32) bool {
	return c.words[i].CompareAndSwap(0, 1)
}

// Release frees slot i. The caller must hold the claim.
func (c *ClaimSet) Release(i int32) {
	c.words[i].Store(0)
}

// Held reports whether slot i is currently claimed. Advisory only.
func (c *ClaimSet) Held(i int32) bool {
	return c.words[i].Load() != 0
}

// AcquireOrdered claims every listed slot. ids must be distinct and in
// ascending order, keeping the global acquisition order consistent across
// lanes. On any failure every claim taken so far is released and false is
// returned.
func (c *ClaimSet) AcquireOrdered(ids []int32) bool {
	for k, id := range ids {
		if !c.TryAcquire(id) {
			for j := 0; j < k; j++ {
				c.Release(ids[j])
			}
			return false
		}
	}
	return true
}

// ReleaseAll frees every listed slot.
func (c *ClaimSet) ReleaseAll(ids []int32) {
	for _, id := range ids {
		c.Release(id)
	}
}
