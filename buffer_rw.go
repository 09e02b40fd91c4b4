// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

type (
	// BufferRW is the default-configured random-access buffer.
	BufferRW = BufferRWOf[Default]

	// BufferRWOf is a random-access buffer maintaining an independent
	// read cursor and write cursor over the same storage, so appends and
	// drains may interleave. The reader never advances past the writer.
	//
	// A BufferRW value must not be used concurrently from multiple
	// goroutines.
	BufferRWOf[O Options] struct {
		s storage
	}
)

// NewBufferRW returns an empty default-configured BufferRW.
func NewBufferRW() BufferRW { return NewBufferRWOf[Default]() }

// NewBufferRWOf returns an empty BufferRW.
func NewBufferRWOf[O Options]() BufferRWOf[O] {
	var b BufferRWOf[O]
	resetEmpty[O](&b.s)
	return b
}

// RWWithCapacity returns an empty default-configured BufferRW with room
// for at least n bytes.
func RWWithCapacity(n int) BufferRW { return RWWithCapacityOf[Default](n) }

// RWWithCapacityOf returns an empty BufferRW with room for at least n
// bytes.
func RWWithCapacityOf[O Options](n int) BufferRWOf[O] {
	m := WithCapacityOf[O](n)
	return m.ToRW()
}

// RWZeroed returns a default-configured BufferRW holding n zero bytes.
func RWZeroed(n int) BufferRW { return RWZeroedOf[Default](n) }

// RWZeroedOf returns a BufferRW holding n zero bytes.
func RWZeroedOf[O Options](n int) BufferRWOf[O] {
	m := ZeroedOf[O](n)
	return m.ToRW()
}

// RWFromBytes builds a default-configured BufferRW from v, adopting its
// allocation when possible.
func RWFromBytes(v []byte) BufferRW { return RWFromBytesOf[Default](v) }

// RWFromBytesOf builds a BufferRW from an owned byte slice; see
// FromBytesOf for the adoption rules.
func RWFromBytesOf[O Options](v []byte) BufferRWOf[O] {
	var b BufferRWOf[O]
	adoptBytes[O](&b.s, v)
	return b
}

// RWFromStatic wraps externally owned bytes as a default-configured
// BufferRW; the first write promotes them into a private heap allocation.
func RWFromStatic(v []byte) BufferRW { return RWFromStaticOf[Default](v) }

// RWFromStaticOf wraps an externally owned, immutable byte range without
// copying. The caller guarantees v stays unmodified for the buffer's
// lifetime; a write triggers static-to-heap promotion.
func RWFromStaticOf[O Options](v []byte) BufferRWOf[O] {
	var b BufferRWOf[O]
	staticStorage[O](&b.s, v)
	return b
}

// Len returns the logical content length, read bytes included.
func (b *BufferRWOf[O]) Len() int { return int(lengthOf[O](&b.s)) }

// IsEmpty reports whether the buffer holds no content.
func (b *BufferRWOf[O]) IsEmpty() bool { return b.Len() == 0 }

// Capacity returns the size of the backing allocation, metadata slack
// included. Inlined buffers report the full inline size.
func (b *BufferRWOf[O]) Capacity() int { return int(capOf[O](&b.s)) }

// Remaining returns the number of bytes between the read cursor and the
// write cursor.
func (b *BufferRWOf[O]) Remaining() int { return int(remainingOf[O](&b.s)) }

// Bytes returns the unread span as a borrowed slice, valid until the next
// mutating operation.
func (b *BufferRWOf[O]) Bytes() []byte { return bytesView[O](&b.s) }

// GetSlice returns the next n unread bytes as a borrowed slice and
// advances the read cursor. Panics when n exceeds Remaining.
func (b *BufferRWOf[O]) GetSlice(n int) []byte { return getSlice[O](&b.s, uintptr(n)) }

// GetCopy reads the next n unread bytes into a freshly allocated slice,
// unlike GetSlice, whose result aliases the buffer. Panics when n exceeds
// Remaining.
func (b *BufferRWOf[O]) GetCopy(n int) []byte {
	return append([]byte(nil), getSlice[O](&b.s, uintptr(n))...)
}

// GetU8 reads one byte. Panics when no unread bytes remain.
func (b *BufferRWOf[O]) GetU8() byte { return getU8[O](&b.s) }

// Advance moves the read cursor forward by n bytes; it cannot pass the
// write cursor. Panics when n exceeds Remaining.
func (b *BufferRWOf[O]) Advance(n int) { advanceStorage[O](&b.s, uintptr(n)) }

// ResetReaderIndex moves the read cursor back to the logical start.
func (b *BufferRWOf[O]) ResetReaderIndex() { setRdx[O](&b.s, offsetOf[O](&b.s)) }

// ResetWriterIndex moves the write cursor back to the logical start,
// discarding the content; the read cursor follows. The allocation is
// retained.
func (b *BufferRWOf[O]) ResetWriterIndex() {
	start := offsetOf[O](&b.s)
	setEnd[O](&b.s, start)
	setRdx[O](&b.s, start)
}

// PutSlice appends v, promoting inlined or static storage to heap when
// needed.
func (b *BufferRWOf[O]) PutSlice(v []byte) { putSlice[O](&b.s, v) }

// PutU8 appends a single byte.
func (b *BufferRWOf[O]) PutU8(v byte) { putU8[O](&b.s, v) }

// PutBytes appends v repeated repeat times.
func (b *BufferRWOf[O]) PutBytes(v byte, repeat int) { putBytes[O](&b.s, v, uintptr(repeat)) }

// Reserve grows the capacity so n additional bytes fit without another
// allocation; the content and cursors are unchanged.
func (b *BufferRWOf[O]) Reserve(n int) { reserveStorage[O](&b.s, uintptr(n)) }

// Resize sets the content length to n; shrinking clamps both cursors.
func (b *BufferRWOf[O]) Resize(n int) { resizeStorage[O](&b.s, uintptr(n)) }

// Clear resets the content to empty, retaining heap allocations.
func (b *BufferRWOf[O]) Clear() {
	if b.s.isInlined() {
		initInlined(&b.s, 0, 0, 0, 0)
		return
	}
	if !isHeap(&b.s) {
		releaseStorage[O](&b.s)
		return
	}
	lay := layoutOf[O]()
	lay.setLenRef(&b.s, 0)
	lay.setWrxRef(&b.s, 0)
	lay.setRdxRef(&b.s, 0)
	lay.setOffsetRef(&b.s, 0)
}

// Truncate reduces the content length to n if it is smaller, clamping
// both cursors into the new range.
func (b *BufferRWOf[O]) Truncate(n int) { truncateStorage[O](&b.s, uintptr(n)) }

// Shrink reallocates a sole-owned heap buffer down to its content when
// the saving is material.
func (b *BufferRWOf[O]) Shrink() { shrinkStorage[O](&b.s, true) }

// Clone returns a buffer with the same content and cursors in private
// storage; heap content is always copied, never aliased.
func (b *BufferRWOf[O]) Clone() BufferRWOf[O] {
	var c BufferRWOf[O]
	if !isHeap(&b.s) {
		c.s = b.s
		return c
	}
	lay := layoutOf[O]()
	length := lengthOf[O](&b.s)
	rdx := rdxOf[O](&b.s) - offsetOf[O](&b.s)
	capacity := capOf[O](&b.s)
	ptr := reallocBufferCounted(b.s.ptr, offsetOf[O](&b.s), length, capacity)
	initReference(lay, &c.s, length, capacity, length, rdx, 0, ptr, flagsReference)
	return c
}

// Release drops the buffer's allocation reference and resets the handle
// to the empty state.
func (b *BufferRWOf[O]) Release() { releaseStorage[O](&b.s) }

// SplitOff splits at the read cursor advanced by off; the receiver keeps
// the bytes before the seam, the returned buffer the bytes after it. The
// halves alias the same allocation until one of them accepts a write.
func (b *BufferRWOf[O]) SplitOff(off int) BufferRWOf[O] {
	return BufferRWOf[O]{s: splitOffStorage[O](&b.s, uintptr(off))}
}

// SplitTo is the mirror of SplitOff: the returned buffer keeps the prefix
// and the receiver advances past the seam.
func (b *BufferRWOf[O]) SplitTo(off int) BufferRWOf[O] {
	return BufferRWOf[O]{s: splitToStorage[O](&b.s, uintptr(off))}
}

// Split splits at the current read cursor, leaving the receiver with no
// unread bytes.
func (b *BufferRWOf[O]) Split() BufferRWOf[O] { return b.SplitOff(0) }

// Unsplit merges other back into the receiver; panics when the halves do
// not rejoin. The left half's reader must have reached the seam.
func (b *BufferRWOf[O]) Unsplit(other *BufferRWOf[O]) {
	if !b.TryUnsplit(other) {
		panic("smallbuf: unsplit requires adjacent buffers over the same allocation with the left half fully read")
	}
}

// TryUnsplit merges other back into the receiver when the halves rejoin
// at their split seam and the left half's reader has reached it; see
// BufferOf.TryUnsplit.
func (b *BufferRWOf[O]) TryUnsplit(other *BufferRWOf[O]) bool {
	return tryUnsplitStorage[O](&b.s, &other.s, true)
}

// IntoBytes converts the buffer into an owned byte slice, handing the
// allocation off without copying when possible. The handle is consumed.
func (b *BufferRWOf[O]) IntoBytes() []byte { return intoBytesStorage[O](&b.s) }

// ToBuffer converts the buffer into a read-only Buffer. Inlined and
// static states forward unchanged; sole-owner heap transfers without
// copying. The handle is consumed.
func (b *BufferRWOf[O]) ToBuffer() BufferOf[O] {
	var out BufferOf[O]
	out.s = convertStorage[O](&b.s, false)
	applyReadIndices[O](&out.s)
	return out
}

// ToMut converts the buffer into an append-only BufferMut, transferring
// the representation without copying when possible. The handle is
// consumed.
func (b *BufferRWOf[O]) ToMut() BufferMutOf[O] {
	var out BufferMutOf[O]
	out.s = convertStorage[O](&b.s, true)
	applyMutIndices[O](&out.s)
	return out
}
