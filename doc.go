// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package smallbuf provides zero-copy, reference-counted,
// small-buffer-optimized byte containers for high-performance I/O
// plumbing.
//
// Three cooperating facades share one storage engine:
//
//	Type       Role
//	────       ────
//	Buffer     read-only shareable view; cheap clones, refcounted sharing
//	BufferMut  exclusively writable, append-only, growable sink
//	BufferRW   random access; independent read and write cursors
//
// # Physical states
//
// Every buffer value discriminates at runtime among four physical states:
//
//   - Inlined: payloads up to 23 bytes (on 64-bit hosts) live inside the
//     buffer value itself; no heap allocation at all.
//   - Static: the buffer references externally owned immutable bytes;
//     no allocation, no reference count. A write promotes to heap first.
//   - Unique heap: a private allocation, as held by a BufferMut (the
//     halves of a split BufferMut share one until a write privatizes
//     the writer).
//   - Shared heap: an allocation aliased by several Buffer clones or
//     split halves, guarded by an atomic reference count stored in a
//     word-aligned metadata region at the tail of the same allocation.
//
// Transitions run upward in cost only when an operation demands it:
// writes past the inline capacity promote to heap, writes through static
// or shared storage take a private copy, growth reallocates
// geometrically.
//
// # Zero-copy protocol
//
// The typical flow builds a BufferMut, freezes it into a Buffer and fans
// the view out to readers:
//
//	m := smallbuf.WithCapacity(4096)
//	m.PutU8(2)
//	m.PutU64LE(8)
//	b := m.Freeze()          // O(1): the allocation transfers
//	c := b.Clone()           // refcount bump, no bytes move
//	_ = c.GetU8()
//
// Split and Unsplit divide a view at its read seam and rejoin it later;
// the halves alias the same allocation. Conversions between the three
// facades and to/from owned []byte slices stay zero-copy whenever the
// current physical state permits (inlined, static, sole-owner heap) and
// degrade to a copy otherwise.
//
// Go has no destructors, so handles expose Release as the Drop analog:
// it drops the handle's reference and the last release makes the
// allocation collectable. Skipping Release never corrupts memory; it
// merely pins the sole-owner fast paths into copying.
//
// # Configuration
//
// Each facade is parameterized by a zero-size Options type fixing the
// growth factor, initial heap capacity, inline and static state
// availability, cursor retention on conversion and the reference-form bit
// layout (half or extended). Buffer, BufferMut and BufferRW alias the
// Default configuration; BufferOf, BufferMutOf and BufferRWOf accept any
// Options implementation.
//
// # Pooling and vectored I/O
//
// BoundedPool is a lock-free MPMC pool recycling buffer handles by
// indirect index, with iox semantic errors (ErrWouldBlock) for
// non-blocking control flow. IoVec converts unread buffer spans into
// struct-iovec-compatible descriptors for readv/writev and io_uring
// submission.
//
// # Failure semantics
//
// Reads past the readable region, out-of-range splits and failed Unsplit
// calls panic with diagnostics; TryUnsplit is the non-panicking variant.
// Reference count overflow panics. Allocator exhaustion is a runtime
// fatal.
//
// # Thread safety
//
// A buffer value is sendable across goroutines, and clones of one
// allocation may live on distinct goroutines: readers advance private
// cursors, never the shared bytes. A single buffer value must not be
// used concurrently. Pool operations are safe for concurrent use.
package smallbuf
