// Copyright (C) 2017. See AUTHORS.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package md4

import "math/bits"

const (
	k2 = 0x5a827999
	k3 = 0x6ed9eba1
)

var (
	shift1 = [4]int{3, 7, 11, 19}
	shift2 = [4]int{3, 5, 9, 13}
	shift3 = [4]int{3, 9, 11, 15}

	schedule2 = [16]uint8{0, 4, 8, 12, 1, 5, 9, 13, 2, 6, 10, 14, 3, 7, 11, 15}
	schedule3 = [16]uint8{0, 8, 4, 12, 2, 10, 6, 14, 1, 9, 5, 13, 3, 11, 7, 15}
)

func f(x, y, z uint32) uint32 { return (x & y) | (^x & z) }
func g(x, y, z uint32) uint32 { return (x & y) | (x & z) | (y & z) }
func h(x, y, z uint32) uint32 { return x ^ y ^ z }

func ff(a, b, c, d, x uint32, s int) uint32 {
	return bits.RotateLeft32(a+f(b, c, d)+x, s)
}

func gg(a, b, c, d, x uint32, s int) uint32 {
	return bits.RotateLeft32(a+g(b, c, d)+x+k2, s)
}

func hh(a, b, c, d, x uint32, s int) uint32 {
	return bits.RotateLeft32(a+h(b, c, d)+x+k3, s)
}

func round1(a, b, c, d uint32, x *[16]uint32) (uint32, uint32, uint32, uint32) {
	for i := 0; i < 16; i += 4 {
		a = ff(a, b, c, d, x[i], shift1[0])
		d = ff(d, a, b, c, x[i+1], shift1[1])
		c = ff(c, d, a, b, x[i+2], shift1[2])
		b = ff(b, c, d, a, x[i+3], shift1[3])
	}
	return a, b, c, d
}

func round2(a, b, c, d uint32, x *[16]uint32) (uint32, uint32, uint32, uint32) {
	for i := 0; i < 16; i += 4 {
		a = gg(a, b, c, d, x[schedule2[i]], shift2[0])
		d = gg(d, a, b, c, x[schedule2[i+1]], shift2[1])
		c = gg(c, d, a, b, x[schedule2[i+2]], shift2[2])
		b = gg(b, c, d, a, x[schedule2[i+3]], shift2[3])
	}
	return a, b, c, d
}

func round3(a, b, c, d uint32, x *[16]uint32) (uint32, uint32, uint32, uint32) {
	for i := 0; i < 16; i += 4 {
		a = hh(a, b, c, d, x[schedule3[i]], shift3[0])
		d = hh(d, a, b, c, x[schedule3[i+1]], shift3[1])
		c = hh(c, d, a, b, x[schedule3[i+2]], shift3[2])
		b = hh(b, c, d, a, x[schedule3[i+3]], shift3[3])
	}
	return a, b, c, d
}

// compress mixes one 64-byte block into s and returns the new state. It
// panics if block is shorter than BlockSize.
func compress(s [4]uint32, block []byte) [4]uint32 {
	var x [16]uint32
	words(&x, block)

	a, b, c, d := round1(s[0], s[1], s[2], s[3], &x)
	a, b, c, d = round2(a, b, c, d, &x)
	a, b, c, d = round3(a, b, c, d, &x)

	return [4]uint32{s[0] + a, s[1] + b, s[2] + c, s[3] + d}
}
