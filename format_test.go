// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"testing"
	"unsafe"
)

func TestLayoutRoundTrip(t *testing.T) {
	layouts := []Layout{LayoutHalf, LayoutExtended}

	for _, lay := range layouts {
		t.Run(lay.Name(), func(t *testing.T) {
			var s storage
			ptr := unsafe.Pointer(&s)
			initReference(lay, &s, 0, 0, 0, 0, 0, ptr, flagsReference)

			values := []uintptr{0, 1, 5, 255, 4096, halfMask >> 1}
			for _, v := range values {
				lay.setLenRef(&s, v)
				if got := lay.lenRef(&s); got != v {
					t.Errorf("%s len round-trip: set %d, got %d", lay.Name(), v, got)
				}
				lay.setRdxRef(&s, v)
				if got := lay.rdxRef(&s); got != v {
					t.Errorf("%s rdx round-trip: set %d, got %d", lay.Name(), v, got)
				}
				lay.setWrxRef(&s, v)
				if got := lay.wrxRef(&s); got != v {
					t.Errorf("%s wrx round-trip: set %d, got %d", lay.Name(), v, got)
				}
				lay.setOffsetRef(&s, v)
				if got := lay.offsetRef(&s); got != v {
					t.Errorf("%s offset round-trip: set %d, got %d", lay.Name(), v, got)
				}
			}

			// Fields must not clobber each other or the flag bits.
			initReference(lay, &s, 11, 1024, 33, 22, 7, ptr, flagsStatic)
			if got := lay.lenRef(&s); got != 11 {
				t.Errorf("%s len = %d, want 11", lay.Name(), got)
			}
			if got := lay.wrxRef(&s); got != 33 {
				t.Errorf("%s wrx = %d, want 33", lay.Name(), got)
			}
			if got := lay.rdxRef(&s); got != 22 {
				t.Errorf("%s rdx = %d, want 22", lay.Name(), got)
			}
			if got := lay.offsetRef(&s); got != 7 {
				t.Errorf("%s offset = %d, want 7", lay.Name(), got)
			}
			if got := lay.capRef(&s); got != 1024 {
				t.Errorf("%s cap = %d, want 1024", lay.Name(), got)
			}
			if !s.isStatic() || s.isInlined() {
				t.Errorf("%s flags clobbered: word0 = %#x", lay.Name(), s.word0)
			}
		})
	}
}

func TestLayoutHalfCapacityExact(t *testing.T) {
	var s storage
	for _, v := range []uintptr{0, 1, 63, 4095, halfMask} {
		LayoutHalf.setCapRef(&s, v)
		if got := LayoutHalf.capRef(&s); got != v {
			t.Errorf("half cap round-trip: set %d, got %d", v, got)
		}
	}
	if LayoutHalf.RoundCapacity(12345) != 12345 {
		t.Error("half layout must not round capacities")
	}
}

func TestLayoutExtendedCapacityRoundsUp(t *testing.T) {
	caps := []uintptr{0, 1, 64, 4096, extMantissaMask, extMantissaMask + 1,
		extMantissaMask * 3, LayoutExtended.MaxCapacity()}
	var s storage
	for _, v := range caps {
		rounded := LayoutExtended.RoundCapacity(v)
		if rounded < v {
			t.Errorf("extended RoundCapacity(%d) = %d, rounded below request", v, rounded)
		}
		LayoutExtended.setCapRef(&s, v)
		if got := LayoutExtended.capRef(&s); got != rounded {
			t.Errorf("extended cap(%d) = %d, want %d", v, got, rounded)
		}
		// A representable capacity must round-trip exactly.
		LayoutExtended.setCapRef(&s, rounded)
		if got := LayoutExtended.capRef(&s); got != rounded {
			t.Errorf("extended cap(%d) not a fixed point: got %d", rounded, got)
		}
	}
}

func TestLayoutExtendedFloorCapacity(t *testing.T) {
	for _, v := range []uintptr{0, 15, extMantissaMask, extMantissaMask + 5, 1 << 30} {
		floor := LayoutExtended.floorCapacity(v)
		if floor > v {
			t.Errorf("extended floorCapacity(%d) = %d, above input", v, floor)
		}
		if LayoutExtended.RoundCapacity(floor) != floor {
			t.Errorf("extended floorCapacity(%d) = %d is not representable", v, floor)
		}
	}
}

func TestInlineCursorPacking(t *testing.T) {
	var s storage
	initInlined(&s, 0, 0, 0, 0)
	if !s.isInlined() || s.isStatic() {
		t.Fatalf("initInlined flags: word0 = %#x", s.word0)
	}

	for v := uintptr(0); v <= inlineSize; v++ {
		s.setLenInl(v)
		s.setOffsetInl(inlineSize - v)
		s.setWrxInl(v)
		s.setRdxInl(inlineSize - v)
		if got := s.lenInl(); got != v {
			t.Errorf("inline len round-trip: set %d, got %d", v, got)
		}
		if got := s.offsetInl(); got != inlineSize-v {
			t.Errorf("inline offset round-trip: set %d, got %d", inlineSize-v, got)
		}
		if got := s.wrxInl(); got != v {
			t.Errorf("inline wrx round-trip: set %d, got %d", v, got)
		}
		if got := s.rdxInl(); got != inlineSize-v {
			t.Errorf("inline rdx round-trip: set %d, got %d", inlineSize-v, got)
		}
		if !s.isInlined() {
			t.Errorf("cursor write at %d clobbered the inline flag", v)
		}
	}
}

func TestFlagsDiscriminant(t *testing.T) {
	cases := []struct {
		name                        string
		fl                          flags
		inlined, staticRef, regular bool
	}{
		{"reference", flagsReference, false, false, true},
		{"inlined", flagsInlined, true, false, false},
		{"static", flagsStatic, false, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fl.inlined() != tc.inlined {
				t.Errorf("inlined() = %v, want %v", tc.fl.inlined(), tc.inlined)
			}
			if tc.fl.staticRef() != tc.staticRef {
				t.Errorf("staticRef() = %v, want %v", tc.fl.staticRef(), tc.staticRef)
			}
			if tc.fl.reference() != tc.regular {
				t.Errorf("reference() = %v, want %v", tc.fl.reference(), tc.regular)
			}
		})
	}
}

func TestStorageSize(t *testing.T) {
	// Three packed words, the allocation pointer and the inline payload
	// padded to word alignment: seven words in total.
	want := uintptr(7 * wordBytes)
	if got := unsafe.Sizeof(storage{}); got != want {
		t.Errorf("storage size = %d, want %d", got, want)
	}
}
