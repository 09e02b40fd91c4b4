// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/smallbuf"
)

func TestBufferRWInterleavedReadWrite(t *testing.T) {
	b := smallbuf.NewBufferRW()
	b.PutU16LE(10)
	if got := b.GetU16LE(); got != 10 {
		t.Fatalf("u16 = %d, want 10", got)
	}
	b.PutU64LE(20)
	b.PutU8(30)
	if got := b.GetU64LE(); got != 20 {
		t.Fatalf("u64 = %d, want 20", got)
	}
	if got := b.GetU8(); got != 30 {
		t.Fatalf("u8 = %d, want 30", got)
	}
	if b.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", b.Remaining())
	}
}

func TestBufferRWReaderCannotPassWriter(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("reading past the write cursor did not panic")
		}
	}()
	b := smallbuf.NewBufferRW()
	b.PutU8(1)
	_ = b.GetU16LE()
}

func TestBufferRWStaticPromotion(t *testing.T) {
	src := []byte{56, 2, 8, 46, 15, 9}
	b := smallbuf.RWFromStatic(src)
	for _, want := range src {
		if got := b.GetU8(); got != want {
			t.Fatalf("static byte = %d, want %d", got, want)
		}
	}
	// The buffer is drained; the next write promotes to heap.
	b.PutU64LE(5)
	if got := b.GetU64LE(); got != 5 {
		t.Fatalf("u64 after promotion = %d, want 5", got)
	}
	if !bytes.Equal(src, []byte{56, 2, 8, 46, 15, 9}) {
		t.Fatal("promotion modified the static source")
	}
}

func TestBufferRWResetWriterIndex(t *testing.T) {
	b := smallbuf.NewBufferRW()
	b.PutBytes(0x99, 40)
	capBefore := b.Capacity()
	b.ResetWriterIndex()
	if b.Len() != 0 || b.Remaining() != 0 {
		t.Fatal("reset writer index must empty the buffer")
	}
	if b.Capacity() != capBefore {
		t.Fatal("reset writer index must retain the allocation")
	}
	b.PutU8(7)
	if got := b.GetU8(); got != 7 {
		t.Fatalf("write after reset = %d, want 7", got)
	}
}

func TestBufferRWResizeClampsCursors(t *testing.T) {
	b := smallbuf.NewBufferRW()
	b.PutBytes(1, 30)
	b.Advance(20)
	b.Resize(10)
	if b.Len() != 10 {
		t.Fatalf("len = %d, want 10", b.Len())
	}
	if b.Remaining() != 0 {
		t.Fatalf("remaining = %d, the read cursor must clamp", b.Remaining())
	}
}

func TestBufferRWReserve(t *testing.T) {
	b := smallbuf.NewBufferRW()
	b.PutBytes(0x10, 8)
	b.Reserve(1000)
	if b.Len() != 8 {
		t.Fatalf("Reserve changed len to %d", b.Len())
	}
	if b.Capacity() < 1008 {
		t.Fatalf("capacity = %d after Reserve(1000)", b.Capacity())
	}
}

func TestBufferRWSplitUnsplitSeam(t *testing.T) {
	b := smallbuf.NewBufferRW()
	b.PutBytes(0xc3, 64)
	r := b.SplitOff(16)
	if b.Remaining() != 16 || r.Remaining() != 48 {
		t.Fatalf("unread halves = %d, %d; want 16, 48", b.Remaining(), r.Remaining())
	}

	// Rejoining before the reader reaches the seam is rejected.
	if b.TryUnsplit(&r) {
		t.Fatal("unsplit with an unread left half must be rejected")
	}
	b.Advance(b.Remaining())
	if !b.TryUnsplit(&r) {
		t.Fatal("unsplit at the seam must succeed")
	}
	if b.Len() != 64 {
		t.Fatalf("merged len = %d, want 64", b.Len())
	}
	if !bytes.Equal(b.GetSlice(64), bytes.Repeat([]byte{0xc3}, 64)) {
		t.Fatal("merged content mismatch")
	}
}

func TestBufferRWCloneKeepsCursors(t *testing.T) {
	b := smallbuf.NewBufferRW()
	b.PutBytes(0x5e, 40)
	b.Advance(10)
	c := b.Clone()
	if c.Remaining() != 30 {
		t.Fatalf("clone remaining = %d, want 30", c.Remaining())
	}
	c.PutU8(0xff)
	if b.Len() != 40 {
		t.Fatal("clone write leaked into the source")
	}
}

func TestBufferRWConversions(t *testing.T) {
	m := smallbuf.NewBufferMut()
	m.PutU32BE(0xdeadbeef)
	rw := m.ToRW()
	if got := rw.GetU32BE(); got != 0xdeadbeef {
		t.Fatalf("u32 through conversion = %#x", got)
	}
	rw.PutU32LE(1)

	b := rw.ToBuffer()
	if got := b.GetU32LE(); got != 1 {
		t.Fatalf("u32 through second conversion = %d, want 1", got)
	}

	m2 := b.ToMut()
	m2.PutU8(9)
	if m2.Len() != 1 {
		t.Fatalf("retained-indices conversion keeps %d unconsumed bytes, want 1", m2.Len())
	}
}

func TestBufferRWFromBuffer(t *testing.T) {
	src := smallbuf.FromBytes(bytes.Repeat([]byte{0x21}, 80))
	c := src.Clone()
	rw := src.ToRW()
	rw.PutU8(0x22)
	if got := c.GetU8(); got != 0x21 {
		t.Fatal("conversion of a shared buffer leaked writes into the sibling")
	}
	if rw.Len() != 81 {
		t.Fatalf("len = %d, want 81", rw.Len())
	}
}

func TestBufferRWIntoBytes(t *testing.T) {
	b := smallbuf.NewBufferRW()
	b.PutBytes(0x88, 100)
	out := b.IntoBytes()
	if len(out) != 100 {
		t.Fatalf("IntoBytes len = %d, want 100", len(out))
	}
	for _, got := range out {
		if got != 0x88 {
			t.Fatal("IntoBytes content mismatch")
		}
	}
}
