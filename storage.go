// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"unsafe"
)

// Cursor convention shared by the facades: all cursors are absolute
// indices from the payload base.
//
//	offset <= rdx <= end <= cap (heap)
//
// offset is where the logical buffer begins (advanced by SplitTo), end is
// one past the last valid byte and doubles as the write cursor, rdx is the
// read cursor. The wrx layout field exists for formats that track a
// separate write cursor; the facades keep it mirrored onto end.

func endOf[O Options](s *storage) uintptr {
	if s.isInlined() {
		return s.lenInl()
	}
	return layoutOf[O]().lenRef(s)
}

func setEnd[O Options](s *storage, v uintptr) {
	if s.isInlined() {
		s.setLenInl(v)
		s.setWrxInl(v)
		return
	}
	lay := layoutOf[O]()
	lay.setLenRef(s, v)
	lay.setWrxRef(s, v)
}

func rdxOf[O Options](s *storage) uintptr {
	if s.isInlined() {
		return s.rdxInl()
	}
	return layoutOf[O]().rdxRef(s)
}

func setRdx[O Options](s *storage, v uintptr) {
	if s.isInlined() {
		s.setRdxInl(v)
		return
	}
	layoutOf[O]().setRdxRef(s, v)
}

func offsetOf[O Options](s *storage) uintptr {
	if s.isInlined() {
		return s.offsetInl()
	}
	return layoutOf[O]().offsetRef(s)
}

func setOffset[O Options](s *storage, v uintptr) {
	if s.isInlined() {
		s.setOffsetInl(v)
		return
	}
	layoutOf[O]().setOffsetRef(s, v)
}

// capOf returns the allocation capacity. Inlined buffers always report
// the full inline size.
func capOf[O Options](s *storage) uintptr {
	if s.isInlined() {
		return inlineSize
	}
	return layoutOf[O]().capRef(s)
}

// lengthOf returns the logical content length end-offset.
func lengthOf[O Options](s *storage) uintptr {
	return endOf[O](s) - offsetOf[O](s)
}

// isHeap reports whether s owns (possibly shared) heap storage that
// participates in reference counting.
func isHeap(s *storage) bool {
	return !s.isInlined() && !s.isStatic() && !s.isSentinel() && s.ptr != nil
}

// resetEmpty returns s to the canonical empty state: inlined when the
// inline form is enabled, a sentinel reference otherwise. It does not
// release held references; callers do that first.
func resetEmpty[O Options](s *storage) {
	o := optionsOf[O]()
	if o.InlineSmall() {
		initInlined(s, 0, 0, 0, 0)
		return
	}
	fl := flagsReference
	if o.StaticStorage() {
		fl = flagsStatic
	}
	initReference(o.Layout(), s, 0, 0, 0, 0, 0, emptySentinelPtr(), fl)
}

// releaseStorage drops the reference held by s, if any, and resets s to
// the empty state. Inlined, static and sentinel storage is dropped
// without bookkeeping.
func releaseStorage[O Options](s *storage) {
	if isHeap(s) {
		// The last decrement severs the pointer below; the
		// allocation becomes collectable.
		releaseRef(s.ptr, capOf[O](s))
	}
	resetEmpty[O](s)
}

// cloneStorage copies the buffer value, acquiring a reference for heap
// storage. Inlined and static values are plain copies.
func cloneStorage[O Options](s *storage) storage {
	if isHeap(s) {
		acquireRef(s.ptr, capOf[O](s))
	}
	return *s
}

// forgetStorage clears s without releasing its reference; used when the
// three-word representation has been transferred to another facade.
func forgetStorage[O Options](s *storage) {
	s.ptr = nil
	resetEmpty[O](s)
}

// remainingOf returns the number of unread bytes.
func remainingOf[O Options](s *storage) uintptr {
	return endOf[O](s) - rdxOf[O](s)
}

// ensureReadable bounds-checks a read of n bytes at rdx and returns the
// pointer to read from. Panics with a diagnostic on underflow.
func ensureReadable[O Options](s *storage, n uintptr) unsafe.Pointer {
	remaining := remainingOf[O](s)
	if remaining < n {
		panicOutOfRange(n, remaining)
	}
	return unsafe.Add(s.base(), rdxOf[O](s))
}

// getSlice returns a view of the next n unread bytes and advances the
// read cursor. The view aliases the buffer contents and stays valid until
// the next mutating operation on any handle of the allocation.
func getSlice[O Options](s *storage, n uintptr) []byte {
	p := ensureReadable[O](s, n)
	setRdx[O](s, rdxOf[O](s)+n)
	return unsafe.Slice((*byte)(p), n)
}

func getU8[O Options](s *storage) byte {
	p := ensureReadable[O](s, 1)
	setRdx[O](s, rdxOf[O](s)+1)
	return *(*byte)(p)
}

func advanceStorage[O Options](s *storage, n uintptr) {
	remaining := remainingOf[O](s)
	if remaining < n {
		panicOutOfRange(n, remaining)
	}
	setRdx[O](s, rdxOf[O](s)+n)
}

// bytesView returns the unread span [rdx, end).
func bytesView[O Options](s *storage) []byte {
	n := remainingOf[O](s)
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Add(s.base(), rdxOf[O](s))), n)
}

// contentView returns the whole logical span [offset, end).
func contentView[O Options](s *storage) []byte {
	n := lengthOf[O](s)
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Add(s.base(), offsetOf[O](s))), n)
}

// splitOffStorage splits at rdx+off. s keeps [offset, idx); the returned
// storage aliases the same bytes and spans [idx, end).
func splitOffStorage[O Options](s *storage, off uintptr) storage {
	idx := rdxOf[O](s) + off
	if idx >= endOf[O](s) {
		panicSplitOutOfRange(endOf[O](s), idx)
	}
	other := cloneStorage[O](s)
	setEnd[O](s, idx)
	setOffset[O](&other, idx)
	setRdx[O](&other, idx)
	return other
}

// splitToStorage is the mirror: the returned storage keeps the prefix
// [offset, idx); s advances to [idx, end).
func splitToStorage[O Options](s *storage, off uintptr) storage {
	idx := rdxOf[O](s) + off
	if idx >= endOf[O](s) {
		panicSplitOutOfRange(endOf[O](s), idx)
	}
	other := cloneStorage[O](s)
	setEnd[O](&other, idx)
	setOffset[O](s, idx)
	setRdx[O](s, idx)
	return other
}

// tryUnsplitStorage merges other back into s when the two views rejoin at
// their split seam. Preconditions: identical physical state, identical
// allocation for non-inlined state, adjacency (the left half's end equals
// the right half's offset) and, for reader facades, a fully read left
// half — rejoining earlier would resurrect bytes the reader already
// consumed. On success s spans the union with its cursors reset to the
// start and other is released; on failure both are left untouched. An
// empty s is the exception: it takes other over as it is, cursors
// included, without these checks.
func tryUnsplitStorage[O Options](s, other *storage, requireLeftRead bool) bool {
	if lengthOf[O](s) == 0 {
		releaseStorage[O](s)
		*s = *other
		forgetStorage[O](other)
		return true
	}
	if s.flags() != other.flags() {
		return false
	}
	if !s.isInlined() && s.ptr != other.ptr {
		return false
	}
	left, right := s, other
	if offsetOf[O](left) > offsetOf[O](right) {
		left, right = right, left
	}
	if endOf[O](left) != offsetOf[O](right) {
		return false
	}
	if requireLeftRead && rdxOf[O](left) != endOf[O](left) {
		return false
	}
	// Inlined halves each carry their own copy of the payload; the right
	// half's bytes, including any it appended after the split, are copied
	// into s before the window widens.
	start, stop := offsetOf[O](left), endOf[O](right)
	if s.isInlined() {
		from := offsetOf[O](right)
		copy(s.inl[from:stop], right.inl[from:stop])
	}
	setOffset[O](s, start)
	setEnd[O](s, stop)
	setRdx[O](s, start)
	releaseStorage[O](other)
	return true
}

// shrinkStorage reallocates heap storage down to the logical length plus
// metadata slack. No-op for inlined, static and sentinel storage, for
// shared allocations when requireSole is set, and when the saving would
// not be material.
func shrinkStorage[O Options](s *storage, requireSole bool) {
	if !isHeap(s) {
		return
	}
	capacity := capOf[O](s)
	if requireSole && !isOnly(s.ptr, capacity) {
		return
	}
	lay := layoutOf[O]()
	length := lengthOf[O](s)
	target := lay.RoundCapacity(length + additionalBufferCap)
	if capacity <= target {
		return
	}
	rdx := rdxOf[O](s) - offsetOf[O](s)
	ptr := reallocBufferCounted(s.ptr, offsetOf[O](s), length, target)
	releaseRef(s.ptr, capacity)
	initReference(lay, s, length, target, length, rdx, 0, ptr, flagsReference)
}

// ensureWritable returns a pointer at which req contiguous bytes may be
// written, performing whatever physical-state transition the write needs:
// inline-to-heap promotion once the payload outgrows the inline region,
// static-to-heap promotion on the first write, a private copy when the
// heap allocation is observed shared, and geometric reallocation when the
// capacity is exhausted. Callers copy their bytes and advance end.
func ensureWritable[O Options](s *storage, req uintptr) unsafe.Pointer {
	o := optionsOf[O]()
	lay := o.Layout()
	growth := uintptr(o.GrowthFactor())
	initialCap := uintptr(o.InitialCap())

	if s.isInlined() {
		if endOf[O](s)+req > inlineSize {
			length := lengthOf[O](s)
			rdx := rdxOf[O](s) - offsetOf[O](s)
			capacity := lay.RoundCapacity(findSufficientCap(initialCap, length+req+additionalBufferCap, growth))
			ptr := reallocBufferCounted(unsafe.Pointer(&s.inl[0]), offsetOf[O](s), length, capacity)
			initReference(lay, s, length, capacity, length, rdx, 0, ptr, flagsReference)
			return unsafe.Add(ptr, length)
		}
		return unsafe.Add(unsafe.Pointer(&s.inl[0]), endOf[O](s))
	}

	length := lengthOf[O](s)
	rdx := rdxOf[O](s) - offsetOf[O](s)

	if s.isStatic() || s.isSentinel() {
		// Promote the externally owned bytes into a private heap
		// allocation before the first write.
		capacity := lay.RoundCapacity(findSufficientCap(initialCap, length+req+additionalBufferCap, growth))
		ptr := reallocBufferCounted(s.ptr, offsetOf[O](s), length, capacity)
		initReference(lay, s, length, capacity, length, rdx, 0, ptr, flagsReference)
		return unsafe.Add(ptr, length)
	}

	capacity := capOf[O](s)
	if !isOnly(s.ptr, capacity) {
		// Writing through a shared allocation would be visible to the
		// sibling views; take a private copy first.
		newCap := lay.RoundCapacity(findSufficientCap(capacity, length+req+additionalBufferCap, growth))
		ptr := reallocBufferCounted(s.ptr, offsetOf[O](s), length, newCap)
		releaseRef(s.ptr, capacity)
		initReference(lay, s, length, newCap, length, rdx, 0, ptr, flagsReference)
		return unsafe.Add(ptr, length)
	}
	if capacity < endOf[O](s)+req+additionalBufferCap {
		// Sole owner: the old allocation is dropped without touching
		// its count.
		newCap := lay.RoundCapacity(findSufficientCap(capacity*growth, length+req+additionalBufferCap, growth))
		ptr := reallocBufferCounted(s.ptr, offsetOf[O](s), length, newCap)
		initReference(lay, s, length, newCap, length, rdx, 0, ptr, flagsReference)
		return unsafe.Add(ptr, length)
	}
	return unsafe.Add(s.ptr, endOf[O](s))
}

// putableSlice reserves n writable bytes, advances end past them and
// returns the span for the caller to fill.
func putableSlice[O Options](s *storage, n uintptr) []byte {
	p := ensureWritable[O](s, n)
	setEnd[O](s, endOf[O](s)+n)
	return unsafe.Slice((*byte)(p), n)
}

func putSlice[O Options](s *storage, v []byte) {
	if len(v) == 0 {
		return
	}
	copy(putableSlice[O](s, uintptr(len(v))), v)
}

func putU8[O Options](s *storage, v byte) {
	putableSlice[O](s, 1)[0] = v
}

func putBytes[O Options](s *storage, v byte, repeat uintptr) {
	if repeat == 0 {
		return
	}
	dst := putableSlice[O](s, repeat)
	for i := range dst {
		dst[i] = v
	}
}

// reserveStorage grows the capacity so n additional bytes fit without
// changing the content.
func reserveStorage[O Options](s *storage, n uintptr) {
	_ = ensureWritable[O](s, n)
}

// resizeStorage changes the logical length to n, growing like a reserve
// followed by an end extension and shrinking like a truncate.
func resizeStorage[O Options](s *storage, n uintptr) {
	length := lengthOf[O](s)
	if n <= length {
		truncateStorage[O](s, n)
		return
	}
	_ = ensureWritable[O](s, n-length)
	setEnd[O](s, endOf[O](s)+(n-length))
}

// truncateStorage reduces the logical length to n, clamping the read and
// write cursors into the new range.
func truncateStorage[O Options](s *storage, n uintptr) {
	if lengthOf[O](s) <= n {
		return
	}
	stop := offsetOf[O](s) + n
	setEnd[O](s, stop)
	if rdxOf[O](s) > stop {
		setRdx[O](s, stop)
	}
}
