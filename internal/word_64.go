// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64 || loong64 || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x || sparc64 || wasm

package internal

// Machine-word geometry for 64-bit architectures. The buffer storage
// format packs its cursors relative to these values.
const (
	// WordBytes is the size of a machine word in bytes.
	WordBytes = 8
	// WordBits is the size of a machine word in bits.
	WordBits = 64
	// InlineFieldBits is the bit width of one packed inline cursor.
	// The inline payload holds at most 3*WordBytes-1 = 23 bytes, so
	// every cursor value fits in 5 bits.
	InlineFieldBits = 5
	// CapShiftBits is the bit width of the extended layout's
	// power-of-two capacity shift.
	CapShiftBits = 4
)
