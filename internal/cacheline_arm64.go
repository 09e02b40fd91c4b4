// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build arm64

package internal

// CacheLineSize is the L1 cache line size for ARM64 architectures.
// Use 128 bytes as a conservative value for Apple Silicon compatibility.
const CacheLineSize = 128
