// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"testing"
)

func TestBufferMutInlineToHeapTransition(t *testing.T) {
	b := NewBufferMut()
	b.PutU8(2)
	b.PutU64LE(8)
	if !b.s.isInlined() {
		t.Fatal("9 bytes must stay inlined")
	}
	if b.Capacity() != inlineSize {
		t.Fatalf("inlined capacity = %d, want %d", b.Capacity(), inlineSize)
	}
	b.PutU64LE(7)
	b.PutU16LE(1)
	if !b.s.isInlined() {
		t.Fatal("19 bytes must stay inlined")
	}
	b.PutU64LE(45)
	if b.s.isInlined() {
		t.Fatal("27 bytes must have been promoted to heap")
	}
	if b.Len() != 27 {
		t.Fatalf("len = %d, want 27", b.Len())
	}
	if uintptr(b.Capacity()) < 27+additionalBufferCap {
		t.Fatalf("heap capacity = %d, want >= %d", b.Capacity(), 27+int(additionalBufferCap))
	}
	if !isOnly(b.s.ptr, capOf[Default](&b.s)) {
		t.Fatal("a BufferMut must be sole owner of its promotion target")
	}
}

func TestBufferCloneRefCount(t *testing.T) {
	m := NewBufferMut()
	m.PutBytes(0xab, 64)
	b := m.Freeze()
	c := b.Clone()

	if b.s.ptr != c.s.ptr {
		t.Fatal("clone must alias the same allocation")
	}
	if got := refCount(b.s.ptr, capOf[Default](&b.s)); got != 2 {
		t.Fatalf("refCount after clone = %d, want 2", got)
	}
	c.Release()
	if got := refCount(b.s.ptr, capOf[Default](&b.s)); got != 1 {
		t.Fatalf("refCount after release = %d, want 1", got)
	}
	if got := b.GetU8(); got != 0xab {
		t.Fatalf("surviving handle reads %#x, want 0xab", got)
	}
}

func TestBufferRefCountInvariant(t *testing.T) {
	const k = 7
	m := NewBufferMut()
	m.PutBytes(0x5a, 100)
	b := m.Freeze()

	clones := make([]Buffer, k)
	for i := range clones {
		clones[i] = b.Clone()
	}
	if got := refCount(b.s.ptr, capOf[Default](&b.s)); got != k+1 {
		t.Fatalf("refCount after %d clones = %d, want %d", k, got, k+1)
	}
	for i := range clones {
		clones[i].Release()
	}
	if got := refCount(b.s.ptr, capOf[Default](&b.s)); got != 1 {
		t.Fatalf("refCount after releasing %d handles = %d, want 1", k, got)
	}
	for i := 0; i < 100; i++ {
		if got := b.GetU8(); got != 0x5a {
			t.Fatalf("byte %d = %#x after sibling releases, want 0x5a", i, got)
		}
	}
}

func TestBufferStaticState(t *testing.T) {
	src := []byte{56, 2, 8, 46, 15, 9}
	b := FromStatic(src)
	if !b.s.isStatic() || b.s.isInlined() {
		t.Fatal("FromStatic must produce the static state")
	}
	if b.Capacity() != len(src) {
		t.Fatalf("static capacity = %d, want len %d", b.Capacity(), len(src))
	}
	// Static reads must go through the caller's bytes, not a copy.
	if b.s.ptr == nil || b.GetU8() != 56 {
		t.Fatal("static read must see the wrapped bytes")
	}
	b.Release()
}

func TestBufferRWStaticPromotionOnWrite(t *testing.T) {
	src := []byte{1, 2, 3}
	rw := RWFromStatic(src)
	if !rw.s.isStatic() {
		t.Fatal("RWFromStatic must produce the static state")
	}
	rw.PutU8(4)
	if rw.s.isStatic() {
		t.Fatal("the first write must clear the static state")
	}
	if !isHeap(&rw.s) {
		t.Fatal("the first write must promote to heap")
	}
	if src[0] != 1 || src[1] != 2 || src[2] != 3 {
		t.Fatal("promotion must not touch the wrapped bytes")
	}
	if got := rw.GetSlice(4); got[0] != 1 || got[3] != 4 {
		t.Fatalf("promoted content = %v, want [1 2 3 4]", got)
	}
}

func TestBufferShrinkSharedNoop(t *testing.T) {
	m := WithCapacity(512)
	m.PutBytes(0x11, 10)
	b := m.Freeze()
	c := b.Clone()

	capBefore := capOf[Default](&b.s)
	ptrBefore := b.s.ptr
	b.Shrink()
	if b.s.ptr != ptrBefore || capOf[Default](&b.s) != capBefore {
		t.Fatal("shrink of a shared buffer must be a no-op")
	}
	for i := 0; i < 10; i++ {
		if c.GetU8() != 0x11 {
			t.Fatal("sibling bytes changed across shrink")
		}
	}
	c.Release()
	b.Shrink()
	if capOf[Default](&b.s) >= capBefore {
		t.Fatal("sole-owner shrink must reduce a 512-byte allocation holding 10 bytes")
	}
	b.ResetReaderIndex()
	for i := 0; i < 10; i++ {
		if b.GetU8() != 0x11 {
			t.Fatal("content changed across sole-owner shrink")
		}
	}
}

func TestFreezeZeroCopyWhenSoleOwner(t *testing.T) {
	m := WithCapacity(100)
	m.PutBytes(0x77, 50)
	ptr := m.s.ptr
	b := m.Freeze()
	if b.s.ptr != ptr {
		t.Fatal("freeze of a sole-owned heap BufferMut must transfer the allocation")
	}
	if got := refCount(b.s.ptr, capOf[Default](&b.s)); got != 1 {
		t.Fatalf("refCount after freeze = %d, want 1", got)
	}
	if m.Len() != 0 {
		t.Fatal("freeze must consume the source handle")
	}

	// Round trip back: still the same allocation.
	m2 := b.ToMut()
	if m2.s.ptr != ptr {
		t.Fatal("sole-owner conversion back to BufferMut must not copy")
	}
}

func TestBufferToMutCopiesWhenShared(t *testing.T) {
	m := WithCapacity(64)
	m.PutBytes(0x3c, 40)
	b := m.Freeze()
	c := b.Clone()

	m2 := b.ToMut()
	if m2.s.ptr == c.s.ptr {
		t.Fatal("conversion of a shared buffer must allocate a private copy")
	}
	if got := refCount(c.s.ptr, capOf[Default](&c.s)); got != 1 {
		t.Fatalf("source refCount after shared conversion = %d, want 1", got)
	}
	if m2.Len() != 40 {
		t.Fatalf("converted length = %d, want 40", m2.Len())
	}
}

func TestBufferRWConversionMatrix(t *testing.T) {
	m := WithCapacity(64)
	m.PutU64LE(99)
	ptr := m.s.ptr

	rw := m.ToRW()
	if rw.s.ptr != ptr {
		t.Fatal("BufferMut to BufferRW must transfer the allocation")
	}
	if got := rw.GetU64LE(); got != 99 {
		t.Fatalf("read after conversion = %d, want 99", got)
	}

	b := rw.ToBuffer()
	if b.s.ptr != ptr {
		t.Fatal("sole-owner BufferRW to Buffer must transfer the allocation")
	}
}

func TestNoInlineEmptySentinel(t *testing.T) {
	b := NewBufferOf[NoInline]()
	if b.s.isInlined() {
		t.Fatal("NoInline buffers must never inline")
	}
	if !b.s.isSentinel() {
		t.Fatal("empty NoInline buffer must reference the sentinel")
	}
	if !b.s.isStatic() {
		t.Fatal("the sentinel reference carries the static flag when static storage is enabled")
	}
	if b.Len() != 0 || b.Remaining() != 0 {
		t.Fatal("sentinel buffer must be empty")
	}
	b.Release()

	rw := NewBufferRWOf[NoInline]()
	rw.PutU8(1)
	if rw.s.isSentinel() || !isHeap(&rw.s) {
		t.Fatal("writing through a sentinel must allocate heap storage")
	}
	if rw.GetU8() != 1 {
		t.Fatal("content lost across sentinel promotion")
	}
}

func TestMutWriteAfterSplitPrivatizes(t *testing.T) {
	m := WithCapacity(64)
	m.PutBytes(0xaa, 32)
	tail := m.SplitOff(16)

	if m.s.ptr != tail.s.ptr {
		t.Fatal("split halves alias the allocation until a write lands")
	}
	tail.PutU8(0xbb)
	if m.s.ptr == tail.s.ptr {
		t.Fatal("a write through a shared half must move it to a private copy")
	}
	if !isOnly(m.s.ptr, capOf[Default](&m.s)) {
		t.Fatal("the untouched half must be sole owner again")
	}
	for _, got := range m.Bytes() {
		if got != 0xaa {
			t.Fatal("sibling bytes changed by the privatized write")
		}
	}
}
