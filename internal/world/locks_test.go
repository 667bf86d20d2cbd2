package world

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestClaimExclusive(t *testing.T) {
	c := NewClaimSet(4)

	if !c.TryAcquire(2) {
		t.Fatal("first acquire should succeed")
	}
	if c.TryAcquire(2) {
		t.Fatal("second acquire of held slot should fail")
	}
	c.Release(2)
	if !c.TryAcquire(2) {
		t.Fatal("acquire after release should succeed")
	}
}

func TestAcquireOrderedRollback(t *testing.T) {
	c := NewClaimSet(8)

	if !c.TryAcquire(5) {
		t.Fatal("setup acquire failed")
	}

	if c.AcquireOrdered([]int32{1, 3, 5, 7}) {
		t.Fatal("AcquireOrdered should fail when a slot is held")
	}

	// Partial acquisitions must have been rolled back.
	for _, id := range []int32{1, 3, 7} {
		if c.Held(id) {
			t.Errorf("slot %d left claimed after rollback", id)
		}
	}

	c.Release(5)
	if !c.AcquireOrdered([]int32{1, 3, 5, 7}) {
		t.Fatal("AcquireOrdered should succeed on free slots")
	}
	c.ReleaseAll([]int32{1, 3, 5, 7})
}

func TestClaimSingleWinner(t *testing.T) {
	c := NewClaimSet(1)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryAcquire(0) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("expected exactly one winner, got %d", wins.Load())
	}
}
