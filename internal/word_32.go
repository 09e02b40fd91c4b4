// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build 386 || arm || mips || mipsle || ppc || s390 || armbe || mipsbe || riscv32

package internal

// Machine-word geometry for 32-bit architectures.
//
// Note: 32-bit targets are supported by the storage format itself but not
// by the bounded pool, which relies on 64-bit atomics.
const (
	// WordBytes is the size of a machine word in bytes.
	WordBytes = 4
	// WordBits is the size of a machine word in bits.
	WordBits = 32
	// InlineFieldBits is the bit width of one packed inline cursor.
	// The inline payload holds at most 3*WordBytes-1 = 11 bytes.
	InlineFieldBits = 4
	// CapShiftBits is the bit width of the extended layout's
	// power-of-two capacity shift.
	CapShiftBits = 3
)
