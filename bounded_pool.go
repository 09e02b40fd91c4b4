// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"math"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/smallbuf/internal"
	"code.hybscloud.com/spin"
)

// BoundedPool is a lock-free bounded MPMC pool of recyclable buffer
// handles addressed by indirect index. The pool circulates small
// integers, not the handles themselves, so pool traffic never copies
// buffer storage or touches reference counts; ownership of the handle
// moves with the index.
//
// Internally the indices travel through an index ring with a per-slot
// sequence counter, in the style of Dmitry Vyukov's bounded MPMC queue:
// a slot whose sequence matches the producer position is writable, one
// matching consumer position + 1 is readable; a push advances the
// sequence by one and the matching pop moves it to the position one lap
// ahead, so each produce/consume round trip advances it by the ring size. Producer and consumer positions live on
// separate cache lines so Get and Put traffic do not false-share.
//
// If the pool is empty and non-blocking mode is not set, Get parks in
// adaptive waiting until an index is available; symmetrically for Put on
// a full pool.
//
// Usage:
//
//	pool := NewMutPool(capacity)
//	pool.Fill(func() *BufferMut { b := NewBufferMut(); return &b })
//	idx, err := pool.Get()
//	if err != nil {
//	    // iox.ErrWouldBlock: pool drained (non-blocking mode)
//	}
//	buf := pool.Value(idx)
//	// write into buf, hand its contents off, then:
//	_ = pool.Recycle(idx)
type BoundedPool[T Recyclable] struct {
	_ noCopy

	items []T
	ring  indexRing

	nonblocking bool
}

// NewBoundedPool creates a BoundedPool with the specified capacity.
// The capacity must be between 1 and math.MaxUint32 (inclusive) and is
// rounded up to the next power of two.
func NewBoundedPool[T Recyclable](capacity int) *BoundedPool[T] {
	if capacity < 1 || capacity > math.MaxUint32 {
		panic("capacity must be between 1 and MaxUint32")
	}
	capacity = int(nextPow2(uintptr(capacity)))
	pool := &BoundedPool[T]{items: make([]T, 0, capacity)}
	pool.ring.init(capacity)
	return pool
}

// Fill initializes the pool, creating one handle per slot with newFunc
// and putting every index into circulation. It must be called once
// before any other pool operation.
func (pool *BoundedPool[T]) Fill(newFunc func() T) {
	for range cap(pool.items) {
		pool.items = append(pool.items, newFunc())
	}
	pool.ring.prefill(uint64(cap(pool.items)))
}

// SetNonblock enables or disables the non-blocking mode of the pool.
// When nonblocking is true, Get and Put return iox.ErrWouldBlock instead
// of waiting.
func (pool *BoundedPool[T]) SetNonblock(nonblocking bool) {
	pool.nonblocking = nonblocking
}

// Get takes an index out of circulation and returns it. The caller owns
// the associated handle until it gives the index back.
// Returns iox.ErrWouldBlock if the pool is empty and non-blocking mode
// is set.
//
// In blocking mode an empty pool means every handle is out doing I/O;
// indices come back on external completions, so Get yields with
// iox.Backoff rather than spinning the CPU.
func (pool *BoundedPool[T]) Get() (indirect int, err error) {
	pool.mustBeFilled()
	var aw iox.Backoff
	for {
		if idx, ok := pool.ring.pop(); ok {
			return int(idx), nil
		}
		if pool.nonblocking {
			return -1, iox.ErrWouldBlock
		}
		aw.Wait()
	}
}

// Put returns an index to circulation, releasing ownership of its
// handle. Returns iox.ErrWouldBlock if the pool is full and non-blocking
// mode is set; blocks with adaptive waiting otherwise.
func (pool *BoundedPool[T]) Put(indirect int) error {
	pool.mustBeFilled()
	pool.checkIndirect(indirect)
	var aw iox.Backoff
	for {
		if pool.ring.push(uint64(indirect)) {
			return nil
		}
		if pool.nonblocking {
			return iox.ErrWouldBlock
		}
		aw.Wait()
	}
}

// Recycle clears the handle behind indirect and returns its index to
// circulation: the Put every buffer-recycling caller wants.
func (pool *BoundedPool[T]) Recycle(indirect int) error {
	pool.Value(indirect).Clear()
	return pool.Put(indirect)
}

// Value returns the handle associated with the given indirect index.
// The caller must have acquired this index via Get.
func (pool *BoundedPool[T]) Value(indirect int) T {
	pool.mustBeFilled()
	pool.checkIndirect(indirect)
	return pool.items[indirect]
}

// SetValue replaces the handle at the specified indirect index.
// The caller must have acquired this index via Get.
func (pool *BoundedPool[T]) SetValue(indirect int, value T) {
	pool.mustBeFilled()
	pool.checkIndirect(indirect)
	pool.items[indirect] = value
}

// Cap returns the capacity of the BoundedPool.
func (pool *BoundedPool[T]) Cap() int {
	return cap(pool.items)
}

func (pool *BoundedPool[T]) mustBeFilled() {
	if len(pool.items) != cap(pool.items) {
		panic("must Fill the pool before using it")
	}
}

func (pool *BoundedPool[T]) checkIndirect(indirect int) {
	if indirect < 0 || indirect >= cap(pool.items) {
		panic("invalid bounded pool indirect")
	}
}

// indexRing is the bounded MPMC index queue under BoundedPool. Slot
// sequence values encode slot state relative to the unbounded producer
// and consumer positions:
//
//	seq == pos       slot free, producer at pos may claim it
//	seq == pos+1     slot holds the value produced at pos
//	otherwise        another producer/consumer is mid hand-off
//
// Claiming a position is a CAS on head or tail; publishing the slot is
// the subsequent sequence store. The two counters sit on their own
// cache lines.
type indexRing struct {
	head atomic.Uint64
	_    [internal.CacheLineSize - 8]byte
	tail atomic.Uint64
	_    [internal.CacheLineSize - 8]byte

	slots []ringSlot
	mask  uint64
}

type ringSlot struct {
	seq atomic.Uint64
	idx uint64
}

// init sizes the ring; capacity must be a power of two. All slots start
// free at their own position.
func (r *indexRing) init(capacity int) {
	r.slots = make([]ringSlot, capacity)
	r.mask = uint64(capacity - 1)
	for i := range r.slots {
		r.slots[i].seq.Store(uint64(i))
	}
}

// prefill publishes the indices 0..n-1 as already produced; only valid
// on a fresh ring before concurrent use.
func (r *indexRing) prefill(n uint64) {
	for i := uint64(0); i < n; i++ {
		r.slots[i&r.mask].idx = i
		r.slots[i&r.mask].seq.Store(i + 1)
	}
	r.tail.Store(n)
}

// push enqueues an index; reports false when the ring is full.
func (r *indexRing) push(idx uint64) bool {
	sw := spin.Wait{}
	pos := r.tail.Load()
	for {
		slot := &r.slots[pos&r.mask]
		switch diff := int64(slot.seq.Load()) - int64(pos); {
		case diff == 0:
			if r.tail.CompareAndSwap(pos, pos+1) {
				slot.idx = idx
				slot.seq.Store(pos + 1)
				return true
			}
			// Lost the position to another producer.
			pos = r.tail.Load()
			sw.Once()
		case diff < 0:
			// The consumer at pos-capacity has not freed this
			// slot yet: the ring is full.
			return false
		default:
			pos = r.tail.Load()
		}
	}
}

// pop dequeues an index; reports false when the ring is empty.
func (r *indexRing) pop() (idx uint64, ok bool) {
	sw := spin.Wait{}
	pos := r.head.Load()
	for {
		slot := &r.slots[pos&r.mask]
		switch diff := int64(slot.seq.Load()) - int64(pos+1); {
		case diff == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				idx = slot.idx
				// Free the slot for the producer one lap ahead.
				slot.seq.Store(pos + r.mask + 1)
				return idx, true
			}
			pos = r.head.Load()
			sw.Once()
		case diff < 0:
			// The producer at pos has not published yet: empty.
			return 0, false
		default:
			pos = r.head.Load()
		}
	}
}
