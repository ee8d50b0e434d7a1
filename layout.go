// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

// pad is cache line padding to prevent false sharing between hot atomic
// fields that are updated by different goroutines.
type pad [64]byte

// padShort pads out a single 8-byte field to a full cache line.
type padShort [64 - 8]byte
