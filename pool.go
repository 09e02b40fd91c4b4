// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

// Pool is a generic object pool interface with configurable blocking
// semantics.
//
// Implementations may operate in blocking or non-blocking mode. In
// blocking mode, Get blocks until an item is available and Put blocks
// until space is available. In non-blocking mode, both operations return
// iox.ErrWouldBlock instead of blocking.
//
// All implementations must be safe for concurrent use.
type Pool[T any] interface {
	// Put returns the item to the pool.
	// Returns iox.ErrWouldBlock if non-blocking and full.
	Put(item T) error

	// Get acquires an item from the pool.
	// Returns iox.ErrWouldBlock if non-blocking and empty.
	Get() (item T, err error)
}

// Recyclable is the contract a pooled buffer handle satisfies: it can be
// cleared back to empty between circulations while keeping its
// allocation. Both *BufferMutOf and *BufferRWOf qualify.
type Recyclable interface {
	Clear()
}

// IndirectPool manages handles by index rather than by value. The pool
// circulates small integers instead of buffer handles, so pool traffic
// never copies storage or touches reference counts; ownership moves with
// the index.
//
// Usage pattern:
//
//	idx, _ := pool.Get()     // Acquire buffer index
//	buf := pool.Value(idx)   // Access buffer by index
//	buf.PutSlice(payload)
//	pool.Recycle(idx)        // Clear and return the buffer
type IndirectPool[T Recyclable] interface {
	Pool[int]

	// Value returns the handle associated with the given indirect
	// index. The caller must have acquired this index via Get.
	Value(indirect int) T

	// SetValue replaces the handle at the specified indirect index.
	// The caller must have acquired this index via Get.
	SetValue(indirect int, item T)

	// Recycle clears the handle behind indirect and returns its index
	// to circulation.
	Recycle(indirect int) error
}

type (
	// MutPool recycles exclusively writable buffers via indirect
	// indexing.
	MutPool = BoundedPool[*BufferMut]

	// RWPool recycles random-access buffers via indirect indexing.
	RWPool = BoundedPool[*BufferRW]
)

// NewMutPool creates a bounded pool for capacity BufferMut handles.
// The capacity is rounded up to the next power of two.
func NewMutPool(capacity int) *MutPool {
	return NewBoundedPool[*BufferMut](capacity)
}

// NewRWPool creates a bounded pool for capacity BufferRW handles.
// The capacity is rounded up to the next power of two.
func NewRWPool(capacity int) *RWPool {
	return NewBoundedPool[*BufferRW](capacity)
}
