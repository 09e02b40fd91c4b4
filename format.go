// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"unsafe"

	"code.hybscloud.com/smallbuf/internal"
)

// The storage value packs six logical cursors (len, cap, wrx, rdx, offset,
// flags) into three machine words next to the allocation pointer. A fourth
// region holds the inline payload; Go's precise garbage collector forbids
// overlapping raw payload bytes with a traced pointer word, so the inline
// bytes get their own storage instead of unioning over ptr/cap.
//
// Reference form, half layout (64-bit):
//
//	word0: len[32] | unused[30] | flags[2]
//	word1: wrx[32] | rdx[32]
//	word2: offset[32] | cap[32]
//
// Reference form, extended layout (64-bit):
//
//	word0: len[40] | capShift[4] | rdxUpper[16] | unused[2] | flags[2]
//	word1: wrx[40] | rdxLower[24]
//	word2: offset[40] | capMantissa[24]
//
// Inlined form (layout independent):
//
//	word0: len[5] | offset[5] | wrx[5] | rdx[5] | unused | flags[2]
//	inl:   payload bytes
type storage struct {
	word0 uintptr
	word1 uintptr
	word2 uintptr
	ptr   unsafe.Pointer
	inl   [inlineSize]byte
}

const (
	wordBits  = internal.WordBits
	wordBytes = internal.WordBytes

	// inlineSize is the maximum number of payload bytes storable in the
	// buffer value itself: the three-word tail minus the byte consumed
	// by the flag bits sharing word0 with len.
	inlineSize = 3*wordBytes - 1
)

// Buffer-kind flag bits. They occupy the two most significant bits of
// word0, which can never carry length information because allocations are
// capped below the addressable range of the layouts.
const (
	flagInline = uintptr(1) << (wordBits - 1)
	flagStatic = uintptr(1) << (wordBits - 2)
	flagsMask  = flagInline | flagStatic
)

// flags discriminates the physical state of a storage value.
// Exactly one of inlined, static reference and reference holds.
type flags uintptr

const (
	flagsReference flags = 0
	flagsInlined         = flags(flagInline)
	flagsStatic          = flags(flagStatic)
)

func (f flags) inlined() bool   { return uintptr(f)&flagInline != 0 }
func (f flags) staticRef() bool { return uintptr(f)&flagStatic != 0 }
func (f flags) reference() bool { return uintptr(f)&flagsMask == 0 }

// Inlined-form cursor packing. Each cursor is InlineFieldBits wide,
// starting from bit 0 of word0.
const (
	inlineFieldBits = internal.InlineFieldBits
	inlineFieldMask = uintptr(1)<<inlineFieldBits - 1

	inlineLenShift    = 0
	inlineOffsetShift = inlineFieldBits
	inlineWrxShift    = inlineFieldBits * 2
	inlineRdxShift    = inlineFieldBits * 3
)

func (s *storage) flags() flags    { return flags(s.word0 & flagsMask) }
func (s *storage) isInlined() bool { return s.word0&flagInline != 0 }
func (s *storage) isStatic() bool  { return s.word0&flagStatic != 0 }

// isSentinel reports whether ptr references the process-global zero-length
// sentinel, the canonical empty state when the inline form is disabled.
func (s *storage) isSentinel() bool { return s.ptr == emptySentinelPtr() }

func (s *storage) lenInl() uintptr { return s.word0 >> inlineLenShift & inlineFieldMask }
func (s *storage) setLenInl(v uintptr) {
	s.word0 = s.word0&^(inlineFieldMask<<inlineLenShift) | (v&inlineFieldMask)<<inlineLenShift
}

func (s *storage) offsetInl() uintptr { return s.word0 >> inlineOffsetShift & inlineFieldMask }
func (s *storage) setOffsetInl(v uintptr) {
	s.word0 = s.word0&^(inlineFieldMask<<inlineOffsetShift) | (v&inlineFieldMask)<<inlineOffsetShift
}

func (s *storage) wrxInl() uintptr { return s.word0 >> inlineWrxShift & inlineFieldMask }
func (s *storage) setWrxInl(v uintptr) {
	s.word0 = s.word0&^(inlineFieldMask<<inlineWrxShift) | (v&inlineFieldMask)<<inlineWrxShift
}

func (s *storage) rdxInl() uintptr { return s.word0 >> inlineRdxShift & inlineFieldMask }
func (s *storage) setRdxInl(v uintptr) {
	s.word0 = s.word0&^(inlineFieldMask<<inlineRdxShift) | (v&inlineFieldMask)<<inlineRdxShift
}

// base returns the first byte of the payload region: the inline array for
// inlined storage, the allocation base otherwise.
func (s *storage) base() unsafe.Pointer {
	if s.isInlined() {
		return unsafe.Pointer(&s.inl[0])
	}
	return s.ptr
}

// initInlined resets s to the inlined form with the given cursors.
func initInlined(s *storage, length, offset, wrx, rdx uintptr) {
	s.word0 = flagInline
	s.word1, s.word2 = 0, 0
	s.ptr = nil
	s.setLenInl(length)
	s.setOffsetInl(offset)
	s.setWrxInl(wrx)
	s.setRdxInl(rdx)
}

// initReference resets s to the reference form (heap or static, per fl)
// with the given cursors, laid out by lay.
func initReference(lay Layout, s *storage, length, capacity, wrx, rdx, offset uintptr, ptr unsafe.Pointer, fl flags) {
	s.word0 = uintptr(fl)
	s.word1, s.word2 = 0, 0
	s.ptr = ptr
	lay.setLenRef(s, length)
	lay.setCapRef(s, capacity)
	lay.setWrxRef(s, wrx)
	lay.setRdxRef(s, rdx)
	lay.setOffsetRef(s, offset)
}

// Layout is a pluggable bit layout for the reference form of the storage
// value. Setters mask their input to the allocated field width; storing a
// value beyond the documented maximum is undefined by contract. Every
// getter round-trips its setter exactly, except the extended layout's
// capacity, which round-trips after RoundCapacity.
type Layout interface {
	// Name identifies the layout in diagnostics.
	Name() string
	// MaxCapacity is the largest representable allocation size.
	MaxCapacity() uintptr
	// RoundCapacity returns the smallest representable capacity that is
	// >= capacity. The identity for exact layouts.
	RoundCapacity(capacity uintptr) uintptr

	// floorCapacity returns the largest representable capacity that is
	// <= capacity; used when adopting a foreign allocation whose size
	// must never be overstated.
	floorCapacity(capacity uintptr) uintptr

	lenRef(s *storage) uintptr
	setLenRef(s *storage, v uintptr)
	rdxRef(s *storage) uintptr
	setRdxRef(s *storage, v uintptr)
	wrxRef(s *storage) uintptr
	setWrxRef(s *storage, v uintptr)
	offsetRef(s *storage) uintptr
	setOffsetRef(s *storage, v uintptr)
	capRef(s *storage) uintptr
	setCapRef(s *storage, v uintptr)
}

// LayoutHalf gives every cursor exactly half a machine word. Fast to
// decode; capacity is capped at 2^(WordBits/2)-1 bytes.
var LayoutHalf Layout = layoutHalf{}

// LayoutExtended compresses the capacity into a mantissa plus a
// power-of-two shift, widening every cursor to 5/8 of a machine word.
// Capacities round up to the nearest representable value.
var LayoutExtended Layout = layoutExtended{}

const (
	halfBits = wordBits / 2
	halfMask = uintptr(1)<<halfBits - 1
)

type layoutHalf struct{}

func (layoutHalf) Name() string                           { return "half" }
func (layoutHalf) MaxCapacity() uintptr                   { return halfMask }
func (layoutHalf) RoundCapacity(capacity uintptr) uintptr { return capacity }

func (layoutHalf) floorCapacity(capacity uintptr) uintptr {
	return min(capacity, halfMask)
}

func (layoutHalf) lenRef(s *storage) uintptr { return s.word0 & halfMask }
func (layoutHalf) setLenRef(s *storage, v uintptr) {
	s.word0 = s.word0&^halfMask | v&halfMask
}

func (layoutHalf) wrxRef(s *storage) uintptr { return s.word1 & halfMask }
func (layoutHalf) setWrxRef(s *storage, v uintptr) {
	s.word1 = s.word1&^halfMask | v&halfMask
}

func (layoutHalf) rdxRef(s *storage) uintptr { return s.word1 >> halfBits & halfMask }
func (layoutHalf) setRdxRef(s *storage, v uintptr) {
	s.word1 = s.word1&^(halfMask<<halfBits) | (v&halfMask)<<halfBits
}

func (layoutHalf) offsetRef(s *storage) uintptr { return s.word2 & halfMask }
func (layoutHalf) setOffsetRef(s *storage, v uintptr) {
	s.word2 = s.word2&^halfMask | v&halfMask
}

func (layoutHalf) capRef(s *storage) uintptr { return s.word2 >> halfBits & halfMask }
func (layoutHalf) setCapRef(s *storage, v uintptr) {
	s.word2 = s.word2&^(halfMask<<halfBits) | (v&halfMask)<<halfBits
}

// Extended layout geometry. Cursors span extWordBits; the capacity is a
// extTailBits-wide mantissa in word2 shifted left by the capShift stored
// next to len in word0. The reader cursor splits into a lower fragment in
// word1 and an upper fragment in word0.
const (
	extWordBits = wordBits / 8 * 5
	extTailBits = wordBits - extWordBits
	extWordMask = uintptr(1)<<extWordBits - 1

	extShiftBits  = internal.CapShiftBits
	extShiftShift = extWordBits
	extShiftMask  = uintptr(1)<<extShiftBits - 1
	extShiftMax   = extShiftMask

	extMantissaShift = extWordBits
	extMantissaMask  = uintptr(1)<<extTailBits - 1

	extRdxLowerBits  = extTailBits
	extRdxLowerShift = extWordBits
	extRdxLowerMask  = uintptr(1)<<extRdxLowerBits - 1
	extRdxUpperBits  = min(extWordBits-extTailBits, wordBits-extWordBits-extShiftBits-2)
	extRdxUpperShift = extWordBits + extShiftBits
	extRdxUpperMask  = uintptr(1)<<extRdxUpperBits - 1
	extRdxMask       = uintptr(1)<<(extRdxLowerBits+extRdxUpperBits) - 1
)

type layoutExtended struct{}

func (layoutExtended) Name() string         { return "extended" }
func (layoutExtended) MaxCapacity() uintptr { return extMantissaMask << extShiftMax }

func (layoutExtended) RoundCapacity(capacity uintptr) uintptr {
	m, s := compressCap(capacity)
	return m << s
}

func (layoutExtended) floorCapacity(capacity uintptr) uintptr {
	var shift uintptr
	for capacity>>shift > extMantissaMask {
		shift++
	}
	if shift > extShiftMax {
		shift = extShiftMax
	}
	return capacity >> shift << shift
}

// compressCap splits capacity into a mantissa and a power-of-two shift
// such that mantissa<<shift >= capacity, rounding up to the next
// representable value.
func compressCap(capacity uintptr) (mantissa, shift uintptr) {
	for capacity>>shift > extMantissaMask {
		shift++
	}
	mantissa = capacity >> shift
	if mantissa<<shift < capacity {
		mantissa++
		if mantissa > extMantissaMask {
			mantissa >>= 1
			shift++
		}
	}
	return mantissa, shift & extShiftMask
}

func (layoutExtended) lenRef(s *storage) uintptr { return s.word0 & extWordMask }
func (layoutExtended) setLenRef(s *storage, v uintptr) {
	s.word0 = s.word0&^extWordMask | v&extWordMask
}

func (layoutExtended) wrxRef(s *storage) uintptr { return s.word1 & extWordMask }
func (layoutExtended) setWrxRef(s *storage, v uintptr) {
	s.word1 = s.word1&^extWordMask | v&extWordMask
}

func (layoutExtended) rdxRef(s *storage) uintptr {
	lower := s.word1 >> extRdxLowerShift & extRdxLowerMask
	upper := s.word0 >> extRdxUpperShift & extRdxUpperMask
	return upper<<extRdxLowerBits | lower
}

func (layoutExtended) setRdxRef(s *storage, v uintptr) {
	v &= extRdxMask
	s.word1 = s.word1&^(extRdxLowerMask<<extRdxLowerShift) | (v&extRdxLowerMask)<<extRdxLowerShift
	s.word0 = s.word0&^(extRdxUpperMask<<extRdxUpperShift) | (v>>extRdxLowerBits)<<extRdxUpperShift
}

func (layoutExtended) offsetRef(s *storage) uintptr { return s.word2 & extWordMask }
func (layoutExtended) setOffsetRef(s *storage, v uintptr) {
	s.word2 = s.word2&^extWordMask | v&extWordMask
}

func (layoutExtended) capRef(s *storage) uintptr {
	mantissa := s.word2 >> extMantissaShift & extMantissaMask
	shift := s.word0 >> extShiftShift & extShiftMask
	return mantissa << shift
}

func (layoutExtended) setCapRef(s *storage, v uintptr) {
	mantissa, shift := compressCap(v)
	s.word2 = s.word2&^(extMantissaMask<<extMantissaShift) | mantissa<<extMantissaShift
	s.word0 = s.word0&^(extShiftMask<<extShiftShift) | shift<<extShiftShift
}
