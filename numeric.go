// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smallbuf

import (
	"encoding/binary"
)

// Uint128 is a 128-bit unsigned integer, standing in for the widest
// accessor width on platforms without a native 128-bit type.
type Uint128 struct {
	Hi, Lo uint64
}

// Uint128From64 widens v to 128 bits.
func Uint128From64(v uint64) Uint128 { return Uint128{Lo: v} }

// nativeHiFirst reports whether the host byte order places the most
// significant word first.
var nativeHiFirst = func() bool {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 0x0102)
	return probe[0] == 0x01
}()

func getU128[O Options](s *storage, order binary.ByteOrder, hiFirst bool) Uint128 {
	raw := getSlice[O](s, 16)
	a := order.Uint64(raw[:8])
	b := order.Uint64(raw[8:])
	if hiFirst {
		return Uint128{Hi: a, Lo: b}
	}
	return Uint128{Hi: b, Lo: a}
}

func putU128[O Options](s *storage, order binary.ByteOrder, hiFirst bool, v Uint128) {
	raw := putableSlice[O](s, 16)
	a, b := v.Lo, v.Hi
	if hiFirst {
		a, b = v.Hi, v.Lo
	}
	order.PutUint64(raw[:8], a)
	order.PutUint64(raw[8:], b)
}

// Read-side multi-byte accessors. Each reads the next width bytes at the
// read cursor and panics, like GetSlice, when fewer bytes remain.

func (b *BufferOf[O]) GetU16LE() uint16 { return binary.LittleEndian.Uint16(getSlice[O](&b.s, 2)) }
func (b *BufferOf[O]) GetU16BE() uint16 { return binary.BigEndian.Uint16(getSlice[O](&b.s, 2)) }
func (b *BufferOf[O]) GetU16NE() uint16 { return binary.NativeEndian.Uint16(getSlice[O](&b.s, 2)) }

func (b *BufferOf[O]) GetU32LE() uint32 { return binary.LittleEndian.Uint32(getSlice[O](&b.s, 4)) }
func (b *BufferOf[O]) GetU32BE() uint32 { return binary.BigEndian.Uint32(getSlice[O](&b.s, 4)) }
func (b *BufferOf[O]) GetU32NE() uint32 { return binary.NativeEndian.Uint32(getSlice[O](&b.s, 4)) }

func (b *BufferOf[O]) GetU64LE() uint64 { return binary.LittleEndian.Uint64(getSlice[O](&b.s, 8)) }
func (b *BufferOf[O]) GetU64BE() uint64 { return binary.BigEndian.Uint64(getSlice[O](&b.s, 8)) }
func (b *BufferOf[O]) GetU64NE() uint64 { return binary.NativeEndian.Uint64(getSlice[O](&b.s, 8)) }

func (b *BufferOf[O]) GetU128LE() Uint128 { return getU128[O](&b.s, binary.LittleEndian, false) }
func (b *BufferOf[O]) GetU128BE() Uint128 { return getU128[O](&b.s, binary.BigEndian, true) }
func (b *BufferOf[O]) GetU128NE() Uint128 { return getU128[O](&b.s, binary.NativeEndian, nativeHiFirst) }

func (b *BufferRWOf[O]) GetU16LE() uint16 { return binary.LittleEndian.Uint16(getSlice[O](&b.s, 2)) }
func (b *BufferRWOf[O]) GetU16BE() uint16 { return binary.BigEndian.Uint16(getSlice[O](&b.s, 2)) }
func (b *BufferRWOf[O]) GetU16NE() uint16 { return binary.NativeEndian.Uint16(getSlice[O](&b.s, 2)) }

func (b *BufferRWOf[O]) GetU32LE() uint32 { return binary.LittleEndian.Uint32(getSlice[O](&b.s, 4)) }
func (b *BufferRWOf[O]) GetU32BE() uint32 { return binary.BigEndian.Uint32(getSlice[O](&b.s, 4)) }
func (b *BufferRWOf[O]) GetU32NE() uint32 { return binary.NativeEndian.Uint32(getSlice[O](&b.s, 4)) }

func (b *BufferRWOf[O]) GetU64LE() uint64 { return binary.LittleEndian.Uint64(getSlice[O](&b.s, 8)) }
func (b *BufferRWOf[O]) GetU64BE() uint64 { return binary.BigEndian.Uint64(getSlice[O](&b.s, 8)) }
func (b *BufferRWOf[O]) GetU64NE() uint64 { return binary.NativeEndian.Uint64(getSlice[O](&b.s, 8)) }

func (b *BufferRWOf[O]) GetU128LE() Uint128 { return getU128[O](&b.s, binary.LittleEndian, false) }
func (b *BufferRWOf[O]) GetU128BE() Uint128 { return getU128[O](&b.s, binary.BigEndian, true) }
func (b *BufferRWOf[O]) GetU128NE() Uint128 { return getU128[O](&b.s, binary.NativeEndian, nativeHiFirst) }

// Write-side multi-byte accessors. Each appends width bytes at the write
// cursor, growing the buffer as needed.

func (b *BufferMutOf[O]) PutU16LE(v uint16) { binary.LittleEndian.PutUint16(putableSlice[O](&b.s, 2), v) }
func (b *BufferMutOf[O]) PutU16BE(v uint16) { binary.BigEndian.PutUint16(putableSlice[O](&b.s, 2), v) }
func (b *BufferMutOf[O]) PutU16NE(v uint16) { binary.NativeEndian.PutUint16(putableSlice[O](&b.s, 2), v) }

func (b *BufferMutOf[O]) PutU32LE(v uint32) { binary.LittleEndian.PutUint32(putableSlice[O](&b.s, 4), v) }
func (b *BufferMutOf[O]) PutU32BE(v uint32) { binary.BigEndian.PutUint32(putableSlice[O](&b.s, 4), v) }
func (b *BufferMutOf[O]) PutU32NE(v uint32) { binary.NativeEndian.PutUint32(putableSlice[O](&b.s, 4), v) }

func (b *BufferMutOf[O]) PutU64LE(v uint64) { binary.LittleEndian.PutUint64(putableSlice[O](&b.s, 8), v) }
func (b *BufferMutOf[O]) PutU64BE(v uint64) { binary.BigEndian.PutUint64(putableSlice[O](&b.s, 8), v) }
func (b *BufferMutOf[O]) PutU64NE(v uint64) { binary.NativeEndian.PutUint64(putableSlice[O](&b.s, 8), v) }

func (b *BufferMutOf[O]) PutU128LE(v Uint128) { putU128[O](&b.s, binary.LittleEndian, false, v) }
func (b *BufferMutOf[O]) PutU128BE(v Uint128) { putU128[O](&b.s, binary.BigEndian, true, v) }
func (b *BufferMutOf[O]) PutU128NE(v Uint128) { putU128[O](&b.s, binary.NativeEndian, nativeHiFirst, v) }

func (b *BufferRWOf[O]) PutU16LE(v uint16) { binary.LittleEndian.PutUint16(putableSlice[O](&b.s, 2), v) }
func (b *BufferRWOf[O]) PutU16BE(v uint16) { binary.BigEndian.PutUint16(putableSlice[O](&b.s, 2), v) }
func (b *BufferRWOf[O]) PutU16NE(v uint16) { binary.NativeEndian.PutUint16(putableSlice[O](&b.s, 2), v) }

func (b *BufferRWOf[O]) PutU32LE(v uint32) { binary.LittleEndian.PutUint32(putableSlice[O](&b.s, 4), v) }
func (b *BufferRWOf[O]) PutU32BE(v uint32) { binary.BigEndian.PutUint32(putableSlice[O](&b.s, 4), v) }
func (b *BufferRWOf[O]) PutU32NE(v uint32) { binary.NativeEndian.PutUint32(putableSlice[O](&b.s, 4), v) }

func (b *BufferRWOf[O]) PutU64LE(v uint64) { binary.LittleEndian.PutUint64(putableSlice[O](&b.s, 8), v) }
func (b *BufferRWOf[O]) PutU64BE(v uint64) { binary.BigEndian.PutUint64(putableSlice[O](&b.s, 8), v) }
func (b *BufferRWOf[O]) PutU64NE(v uint64) { binary.NativeEndian.PutUint64(putableSlice[O](&b.s, 8), v) }

func (b *BufferRWOf[O]) PutU128LE(v Uint128) { putU128[O](&b.s, binary.LittleEndian, false, v) }
func (b *BufferRWOf[O]) PutU128BE(v Uint128) { putU128[O](&b.s, binary.BigEndian, true, v) }
func (b *BufferRWOf[O]) PutU128NE(v Uint128) { putU128[O](&b.s, binary.NativeEndian, nativeHiFirst, v) }
