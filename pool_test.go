// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/smallbuf"
)

func newPoolMut() *smallbuf.BufferMut {
	b := smallbuf.NewBufferMut()
	return &b
}

func TestMutPoolGetPut(t *testing.T) {
	pool := smallbuf.NewMutPool(8)
	pool.Fill(newPoolMut)

	idx, err := pool.Get()
	if err != nil {
		t.Fatal(err)
	}
	buf := pool.Value(idx)
	buf.PutSlice([]byte("payload"))
	if buf.Len() != 7 {
		t.Fatalf("pooled buffer len = %d, want 7", buf.Len())
	}
	if err := pool.Recycle(idx); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatal("Recycle must clear the handle before circulation")
	}

	// A later Get hands out another filled handle.
	again, err := pool.Get()
	if err != nil {
		t.Fatal(err)
	}
	if pool.Value(again) == nil {
		t.Fatal("pool lost the buffer handle")
	}
	_ = pool.Put(again)
}

func TestMutPoolCapRounding(t *testing.T) {
	pool := smallbuf.NewMutPool(100)
	if pool.Cap() != 128 {
		t.Errorf("Cap = %d, want 128 (next power of two)", pool.Cap())
	}
}

func TestMutPoolNonblocking(t *testing.T) {
	pool := smallbuf.NewMutPool(2)
	pool.Fill(newPoolMut)
	pool.SetNonblock(true)

	a, err := pool.Get()
	if err != nil {
		t.Fatal(err)
	}
	b, err := pool.Get()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pool.Get(); err != iox.ErrWouldBlock {
		t.Fatalf("Get on an empty pool = %v, want iox.ErrWouldBlock", err)
	}
	_ = pool.Put(a)
	_ = pool.Put(b)
	if err := pool.Put(a); err != iox.ErrWouldBlock {
		t.Fatalf("Put on a full pool = %v, want iox.ErrWouldBlock", err)
	}
}

func TestRWPoolRecycle(t *testing.T) {
	pool := smallbuf.NewRWPool(4)
	pool.Fill(func() *smallbuf.BufferRW {
		b := smallbuf.NewBufferRW()
		return &b
	})

	idx, err := pool.Get()
	if err != nil {
		t.Fatal(err)
	}
	buf := pool.Value(idx)
	buf.PutU64LE(11)
	if got := buf.GetU64LE(); got != 11 {
		t.Fatalf("pooled RW read = %d, want 11", got)
	}
	if err := pool.Recycle(idx); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatal("Recycle must clear the handle before circulation")
	}
}

func TestMutPoolConcurrent(t *testing.T) {
	pool := smallbuf.NewMutPool(16)
	pool.Fill(newPoolMut)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				idx, err := pool.Get()
				if err != nil {
					t.Error(err)
					return
				}
				buf := pool.Value(idx)
				buf.PutU32LE(uint32(i))
				if err := pool.Recycle(idx); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
