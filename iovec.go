// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"unsafe"
)

// IoVec represents a scatter/gather I/O descriptor compatible with the
// standard Linux struct iovec. It is used to pass multiple non-contiguous
// user-space spans to the kernel in a single vectored I/O system call
// (readv, writev, preadv, pwritev, io_uring operations).
//
// Memory layout matches the C struct iovec exactly:
//
//	struct iovec {
//	    void  *iov_base;  // Starting address
//	    size_t iov_len;   // Number of bytes
//	};
//
// The caller must ensure Base points to valid memory for the lifetime of
// any I/O operation using this IoVec.
type IoVec struct {
	Base *byte  // Starting address of the memory block
	Len  uint64 // Number of bytes to transfer
}

// IoVecFromBuffers converts the unread spans of a slice of read-only
// buffers to an IoVec slice without copying. Empty buffers are skipped.
//
// The descriptors alias the buffer storage: the buffers must stay alive
// and unmodified until the I/O operation completes.
func IoVecFromBuffers[O Options](bufs []BufferOf[O]) []IoVec {
	if len(bufs) == 0 {
		return nil
	}
	vec := make([]IoVec, 0, len(bufs))
	for i := range bufs {
		span := bufs[i].Bytes()
		if len(span) == 0 {
			continue
		}
		vec = append(vec, IoVec{Base: unsafe.SliceData(span), Len: uint64(len(span))})
	}
	return vec
}

// IoVecFromRW converts the unread spans of a slice of random-access
// buffers to an IoVec slice without copying. Empty buffers are skipped.
func IoVecFromRW[O Options](bufs []BufferRWOf[O]) []IoVec {
	if len(bufs) == 0 {
		return nil
	}
	vec := make([]IoVec, 0, len(bufs))
	for i := range bufs {
		span := bufs[i].Bytes()
		if len(span) == 0 {
			continue
		}
		vec = append(vec, IoVec{Base: unsafe.SliceData(span), Len: uint64(len(span))})
	}
	return vec
}

// IoVecFromBytesSlice converts a slice of byte slices to a pointer and
// count suitable for vectored I/O registration. Returns the address of
// the first IoVec element and the number of elements.
//
// Note: the returned address points to a newly allocated []IoVec slice.
// The caller must ensure the input slices remain valid for the lifetime
// of the registration.
func IoVecFromBytesSlice(iov [][]byte) (addr uintptr, n int) {
	if len(iov) == 0 {
		return 0, 0
	}
	vec := make([]IoVec, len(iov))
	for i := range len(iov) {
		vec[i] = IoVec{Base: unsafe.SliceData(iov[i]), Len: uint64(len(iov[i]))}
	}
	addr, n = uintptr(unsafe.Pointer(unsafe.SliceData(vec))), len(vec)
	return
}

// IoVecAddrLen extracts the raw pointer and length from an IoVec slice
// for direct syscall consumption (readv, writev, io_uring submission).
//
// Returns (0, 0) for empty or nil slices.
func IoVecAddrLen(vec []IoVec) (addr uintptr, n int) {
	if len(vec) == 0 {
		return 0, 0
	}
	addr, n = uintptr(unsafe.Pointer(unsafe.SliceData(vec))), len(vec)
	return
}

// BuffersOf groups the unread spans of bufs into a net.Buffers value for
// use with the standard library's vectored writers. The spans alias the
// buffer storage.
func BuffersOf[O Options](bufs []BufferOf[O]) Buffers {
	out := make(Buffers, 0, len(bufs))
	for i := range bufs {
		if span := bufs[i].Bytes(); len(span) > 0 {
			out = append(out, span)
		}
	}
	return out
}
