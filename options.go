// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

// Options is the compile-time configuration of a buffer facade. It is a
// type parameter rather than a runtime value so the switches monomorphize
// and disabled branches fold away, the same way BoundedPool specializes
// per item type.
//
// Implementations must be zero-size struct types; the facades instantiate
// them via their zero value.
type Options interface {
	// GrowthFactor is the geometric growth base for reallocation.
	GrowthFactor() int
	// InitialCap is the first heap capacity after inline promotion.
	InitialCap() int
	// InlineSmall enables the inlined physical state.
	InlineSmall() bool
	// StaticStorage enables the static-reference physical state.
	// BufferMut never wraps external bytes; it reads the switch only for
	// its empty state, whose sentinel reference carries the static flag
	// when InlineSmall is off.
	StaticStorage() bool
	// RetainIndices makes conversions preserve cursor positions
	// verbatim instead of resetting them to the logical start.
	RetainIndices() bool
	// Layout selects the reference-form bit layout.
	Layout() Layout
}

// defaultInitialCap is the next power of two of twice the inline size.
var defaultInitialCap = nextPow2(2 * inlineSize)

func nextPow2(v uintptr) uintptr {
	n := uintptr(1)
	for n < v {
		n <<= 1
	}
	return n
}

// Default is the standard configuration: half layout, inlining and static
// references enabled, growth factor 2.
type Default struct{}

func (Default) GrowthFactor() int   { return 2 }
func (Default) InitialCap() int     { return int(defaultInitialCap) }
func (Default) InlineSmall() bool   { return true }
func (Default) StaticStorage() bool { return true }
func (Default) RetainIndices() bool { return true }
func (Default) Layout() Layout      { return LayoutHalf }

// Extended is Default with the extended layout, trading decode speed for
// a much larger maximum capacity.
type Extended struct{}

func (Extended) GrowthFactor() int   { return 2 }
func (Extended) InitialCap() int     { return int(defaultInitialCap) }
func (Extended) InlineSmall() bool   { return true }
func (Extended) StaticStorage() bool { return true }
func (Extended) RetainIndices() bool { return true }
func (Extended) Layout() Layout      { return LayoutExtended }

// NoInline disables the inlined state; empty buffers reference the
// process-global zero-length sentinel instead.
type NoInline struct{}

func (NoInline) GrowthFactor() int   { return 2 }
func (NoInline) InitialCap() int     { return int(defaultInitialCap) }
func (NoInline) InlineSmall() bool   { return false }
func (NoInline) StaticStorage() bool { return true }
func (NoInline) RetainIndices() bool { return true }
func (NoInline) Layout() Layout      { return LayoutHalf }

func optionsOf[O Options]() O {
	var o O
	return o
}

func layoutOf[O Options]() Layout {
	return optionsOf[O]().Layout()
}
