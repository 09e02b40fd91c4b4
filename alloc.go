// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Heap allocations reserve a word-aligned metadata region past the user
// bytes holding the atomic reference count. The region's position is
// derived purely from the allocation base and capacity, so no separate
// metadata pointer is stored in the buffer value.
const (
	metadataSize = uintptr(wordBytes)
	wordAlign    = uintptr(wordBytes)

	// additionalBufferCap is the slack added to every heap capacity so
	// the metadata region always fits regardless of base alignment.
	additionalBufferCap = metadataSize + wordAlign - 1

	maxRefCount = ^uintptr(0) / 2
)

// emptySentinel is the process-global zero-length allocation target; a
// buffer pointing at it is empty and owns nothing.
var emptySentinel byte

func emptySentinelPtr() unsafe.Pointer { return unsafe.Pointer(&emptySentinel) }

// allocBuffer requests a zero-filled allocation of capacity bytes.
// Allocator exhaustion is a runtime fatal; there is no error return.
func allocBuffer(capacity uintptr) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(make([]byte, capacity)))
}

// metaPtr locates the reference count word inside the allocation: the
// last word-aligned slot before ptr+cap. The caller must guarantee
// cap >= len + additionalBufferCap so the slot never overlaps user bytes.
func metaPtr(ptr unsafe.Pointer, capacity uintptr) *atomic.Uintptr {
	misalign := (uintptr(ptr) + capacity) & (wordAlign - 1)
	return (*atomic.Uintptr)(unsafe.Add(ptr, capacity-misalign-metadataSize))
}

// initRefCount stores the initial count of a freshly allocated buffer.
func initRefCount(ptr unsafe.Pointer, capacity uintptr) {
	metaPtr(ptr, capacity).Store(1)
}

// acquireRef increments the reference count of a shared allocation.
// Counts beyond maxRefCount would alias on release; that is a
// non-recoverable logic error.
func acquireRef(ptr unsafe.Pointer, capacity uintptr) {
	if metaPtr(ptr, capacity).Add(1) > maxRefCount {
		panic("smallbuf: reference count overflow")
	}
}

// releaseRef decrements the reference count and reports whether the
// caller held the last reference and the allocation may be released.
func releaseRef(ptr unsafe.Pointer, capacity uintptr) bool {
	return metaPtr(ptr, capacity).Add(^uintptr(0)) == 0
}

// isOnly reports whether the allocation has exactly one live reference.
// A true result is stable: no other goroutine can promote the buffer to
// shared without going through the caller's instance.
func isOnly(ptr unsafe.Pointer, capacity uintptr) bool {
	return metaPtr(ptr, capacity).Load() == 1
}

func refCount(ptr unsafe.Pointer, capacity uintptr) uintptr {
	return metaPtr(ptr, capacity).Load()
}

// findSufficientCap returns the smallest value >= req reachable from curr
// by repeated multiplication with growth.
func findSufficientCap(curr, req, growth uintptr) uintptr {
	if curr == 0 {
		curr = 1
	}
	for curr < req {
		curr *= growth
	}
	return curr
}

// reallocBuffer allocates newCap bytes and copies length bytes starting
// at src+srcOff into the new allocation. The old allocation is left
// untouched.
func reallocBuffer(src unsafe.Pointer, srcOff, length, newCap uintptr) unsafe.Pointer {
	dst := allocBuffer(newCap)
	if length > 0 {
		copy(unsafe.Slice((*byte)(dst), length), unsafe.Slice((*byte)(unsafe.Add(src, srcOff)), length))
	}
	return dst
}

// reallocBufferCounted is reallocBuffer plus metadata initialization: the
// new allocation starts with a reference count of 1.
func reallocBufferCounted(src unsafe.Pointer, srcOff, length, newCap uintptr) unsafe.Pointer {
	dst := reallocBuffer(src, srcOff, length, newCap)
	initRefCount(dst, newCap)
	return dst
}

// panicOutOfRange reports a read past the readable region.
func panicOutOfRange(requested, available uintptr) {
	panic(fmt.Sprintf("smallbuf: not enough bytes in buffer, expected %d readable bytes but only %d bytes are left", requested, available))
}

// panicSplitOutOfRange reports a split index outside the buffer.
func panicSplitOutOfRange(length, at uintptr) {
	panic(fmt.Sprintf("smallbuf: tried splitting buffer with length %d at %d", length, at))
}
