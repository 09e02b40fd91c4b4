// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"unsafe"
)

type (
	// Buffer is the default-configured read-only view.
	Buffer = BufferOf[Default]

	// BufferOf is an immutable, cheaply shareable byte view. Clones of
	// heap-backed views alias the same allocation through the embedded
	// reference count; inlined and static views copy by value. A Buffer
	// never mutates the bytes it references, only its own read cursor.
	//
	// A Buffer value must not be used concurrently from multiple
	// goroutines; distinct clones may live on distinct goroutines.
	BufferOf[O Options] struct {
		s storage
	}
)

// NewBuffer returns an empty default-configured Buffer.
func NewBuffer() Buffer { return NewBufferOf[Default]() }

// NewBufferOf returns an empty Buffer: inlined when the inline state is
// enabled, a zero-length sentinel reference otherwise.
func NewBufferOf[O Options]() BufferOf[O] {
	var b BufferOf[O]
	resetEmpty[O](&b.s)
	return b
}

// FromBytes builds a default-configured Buffer from v, adopting its
// allocation when possible.
func FromBytes(v []byte) Buffer { return FromBytesOf[Default](v) }

// FromBytesOf builds a Buffer from an owned byte slice. Small payloads
// inline; otherwise the slice's allocation is adopted in place when its
// spare capacity fits the metadata region, else the bytes move into a
// fresh allocation. The buffer takes ownership: the caller must not use v
// afterwards.
func FromBytesOf[O Options](v []byte) BufferOf[O] {
	var b BufferOf[O]
	adoptBytes[O](&b.s, v)
	return b
}

// FromStatic wraps externally owned bytes as a default-configured Buffer.
func FromStatic(v []byte) Buffer { return FromStaticOf[Default](v) }

// FromStaticOf wraps an externally owned, immutable byte range without
// copying or allocation. The caller guarantees v stays unmodified for the
// buffer's lifetime. When the static state is disabled the bytes are
// copied instead.
func FromStaticOf[O Options](v []byte) BufferOf[O] {
	var b BufferOf[O]
	staticStorage[O](&b.s, v)
	return b
}

// staticStorage initializes s as a static reference over v, or copies
// when the static state is disabled.
func staticStorage[O Options](s *storage, v []byte) {
	o := optionsOf[O]()
	if !o.StaticStorage() {
		adoptBytes[O](s, append([]byte(nil), v...))
		return
	}
	l := uintptr(len(v))
	initReference(o.Layout(), s, l, l, l, 0, 0, unsafe.Pointer(unsafe.SliceData(v)), flagsStatic)
}

// Len returns the logical content length, read bytes included.
func (b *BufferOf[O]) Len() int { return int(lengthOf[O](&b.s)) }

// IsEmpty reports whether the buffer holds no content.
func (b *BufferOf[O]) IsEmpty() bool { return b.Len() == 0 }

// Capacity returns the size of the backing allocation. Inlined buffers
// always report the full inline size.
func (b *BufferOf[O]) Capacity() int { return int(capOf[O](&b.s)) }

// Remaining returns the number of unread bytes.
func (b *BufferOf[O]) Remaining() int { return int(remainingOf[O](&b.s)) }

// Bytes returns the unread span as a borrowed slice. The view aliases the
// buffer and stays valid until the next operation on any handle of the
// same allocation.
func (b *BufferOf[O]) Bytes() []byte { return bytesView[O](&b.s) }

// Clone returns a handle to the same bytes. Heap-backed views share the
// allocation and bump the reference count; inlined and static views copy
// the value.
func (b *BufferOf[O]) Clone() BufferOf[O] {
	return BufferOf[O]{s: cloneStorage[O](&b.s)}
}

// Release drops this handle's reference. The last release of a heap
// allocation makes it collectable. The handle resets to the empty state
// and may be reused.
func (b *BufferOf[O]) Release() { releaseStorage[O](&b.s) }

// Clear drops the content and any held reference.
func (b *BufferOf[O]) Clear() { releaseStorage[O](&b.s) }

// Shrink reallocates a sole-owned heap buffer down to its content when
// the saving is material. No-op for inlined, static and shared storage.
func (b *BufferOf[O]) Shrink() { shrinkStorage[O](&b.s, true) }

// Truncate reduces the content length to n if it is smaller, clamping the
// read cursor into the new range.
func (b *BufferOf[O]) Truncate(n int) { truncateStorage[O](&b.s, uintptr(n)) }

// Advance moves the read cursor forward by n bytes.
// Panics when n exceeds Remaining.
func (b *BufferOf[O]) Advance(n int) { advanceStorage[O](&b.s, uintptr(n)) }

// ResetReaderIndex moves the read cursor back to the logical start.
func (b *BufferOf[O]) ResetReaderIndex() { setRdx[O](&b.s, offsetOf[O](&b.s)) }

// GetSlice returns the next n unread bytes as a borrowed slice and
// advances the read cursor. Panics when n exceeds Remaining.
func (b *BufferOf[O]) GetSlice(n int) []byte { return getSlice[O](&b.s, uintptr(n)) }

// GetCopy reads the next n unread bytes into a freshly allocated slice,
// unlike GetSlice, whose result aliases the buffer. Panics when n exceeds
// Remaining.
func (b *BufferOf[O]) GetCopy(n int) []byte {
	return append([]byte(nil), getSlice[O](&b.s, uintptr(n))...)
}

// GetU8 reads one byte. Panics when the buffer is exhausted.
func (b *BufferOf[O]) GetU8() byte { return getU8[O](&b.s) }

// SplitOff splits at the read cursor advanced by off. The receiver keeps
// the bytes before the seam; the returned buffer spans the bytes from the
// seam to the end, aliasing the same allocation. Panics when the seam is
// not inside the buffer.
func (b *BufferOf[O]) SplitOff(off int) BufferOf[O] {
	return BufferOf[O]{s: splitOffStorage[O](&b.s, uintptr(off))}
}

// SplitTo is the mirror of SplitOff: the returned buffer keeps the prefix
// up to the seam and the receiver advances past it.
func (b *BufferOf[O]) SplitTo(off int) BufferOf[O] {
	return BufferOf[O]{s: splitToStorage[O](&b.s, uintptr(off))}
}

// Split splits at the current read cursor, leaving the receiver with no
// unread bytes.
func (b *BufferOf[O]) Split() BufferOf[O] { return b.SplitOff(0) }

// Unsplit merges other back into the receiver at their split seam.
// Panics when the halves do not rejoin; see TryUnsplit for the
// non-panicking variant.
func (b *BufferOf[O]) Unsplit(other *BufferOf[O]) {
	if !b.TryUnsplit(other) {
		panic("smallbuf: unsplit requires adjacent buffers over the same allocation with the left half fully read")
	}
}

// TryUnsplit merges other back into the receiver when both views share
// the physical state and allocation, are adjacent at their split seam and
// the left half has been fully read. On success the receiver spans the
// union with its cursors reset to the start and other is released; on
// failure both buffers are left unchanged and false is returned.
func (b *BufferOf[O]) TryUnsplit(other *BufferOf[O]) bool {
	return tryUnsplitStorage[O](&b.s, &other.s, true)
}

// IntoBytes converts the buffer into an owned byte slice, handing the
// allocation off without copying when the buffer is the sole owner and
// starts at the allocation base. The handle is consumed.
func (b *BufferOf[O]) IntoBytes() []byte { return intoBytesStorage[O](&b.s) }

// ToMut converts the buffer into an exclusively writable BufferMut.
// Inlined and sole-owner heap states transfer without copying; static and
// shared states move into a private allocation. The handle is consumed.
func (b *BufferOf[O]) ToMut() BufferMutOf[O] {
	var m BufferMutOf[O]
	m.s = convertStorage[O](&b.s, true)
	applyMutIndices[O](&m.s)
	return m
}

// ToRW converts the buffer into a random-access BufferRW. Inlined and
// static states forward unchanged; sole-owner heap transfers without
// copying, shared heap moves into a private allocation. The handle is
// consumed.
func (b *BufferOf[O]) ToRW() BufferRWOf[O] {
	var rw BufferRWOf[O]
	rw.s = convertStorage[O](&b.s, false)
	applyReadIndices[O](&rw.s)
	return rw
}

// adoptBytes initializes s from an owned byte slice per the vector
// interop rules: inline when small, adopt the allocation when its spare
// capacity fits the metadata region, copy otherwise.
func adoptBytes[O Options](s *storage, v []byte) {
	o := optionsOf[O]()
	lay := o.Layout()
	l := uintptr(len(v))
	if o.InlineSmall() && l <= inlineSize {
		initInlined(s, l, 0, l, 0)
		copy(s.inl[:l], v)
		return
	}
	base := unsafe.Pointer(unsafe.SliceData(v))
	capacity := lay.floorCapacity(uintptr(cap(v)))
	if capacity < l+additionalBufferCap {
		capacity = lay.RoundCapacity(l + additionalBufferCap)
		ptr := reallocBufferCounted(base, 0, l, capacity)
		initReference(lay, s, l, capacity, l, 0, 0, ptr, flagsReference)
		return
	}
	initRefCount(base, capacity)
	initReference(lay, s, l, capacity, l, 0, 0, base, flagsReference)
}

// intoBytesStorage converts s into an owned byte slice, consuming it.
func intoBytesStorage[O Options](s *storage) []byte {
	length := lengthOf[O](s)
	if isHeap(s) && offsetOf[O](s) == 0 && isOnly(s.ptr, capOf[O](s)) {
		out := unsafe.Slice((*byte)(s.ptr), capOf[O](s))[:length]
		forgetStorage[O](s)
		return out
	}
	out := make([]byte, length)
	copy(out, contentView[O](s))
	releaseStorage[O](s)
	return out
}

// convertStorage moves the physical representation out of s for a facade
// conversion, consuming s. Inlined and sentinel states move by value;
// static states move by value unless promote is set, in which case they
// copy into a private heap allocation; heap states transfer when sole
// owner and copy otherwise. Copied storage is rebased to the allocation
// start with relative cursor positions preserved.
func convertStorage[O Options](s *storage, promote bool) storage {
	if s.isInlined() || s.isSentinel() || (s.isStatic() && !promote) {
		out := *s
		forgetStorage[O](s)
		return out
	}
	lay := layoutOf[O]()
	if isHeap(s) && isOnly(s.ptr, capOf[O](s)) {
		out := *s
		forgetStorage[O](s)
		return out
	}
	length := lengthOf[O](s)
	rdx := rdxOf[O](s) - offsetOf[O](s)
	capacity := lay.RoundCapacity(length + additionalBufferCap)
	ptr := reallocBufferCounted(s.ptr, offsetOf[O](s), length, capacity)
	var out storage
	initReference(lay, &out, length, capacity, length, rdx, 0, ptr, flagsReference)
	releaseStorage[O](s)
	return out
}

// applyMutIndices applies the retain-indices policy for conversions into
// a write-only facade: read progress either becomes the new logical start
// or is discarded.
func applyMutIndices[O Options](s *storage) {
	if optionsOf[O]().RetainIndices() {
		setOffset[O](s, rdxOf[O](s))
	}
	setRdx[O](s, offsetOf[O](s))
}

// applyReadIndices applies the retain-indices policy for conversions into
// a readable facade.
func applyReadIndices[O Options](s *storage) {
	if !optionsOf[O]().RetainIndices() {
		setRdx[O](s, offsetOf[O](s))
	}
}
