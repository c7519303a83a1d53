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

// Package md4 implements the MD4 hash algorithm as defined in RFC 1320.
//
// MD4 is cryptographically broken. It is provided for compatibility with
// legacy protocols (NTLM, RADIUS MS-CHAP, ed2k) that still require it, usually
// on hosts whose OpenSSL no longer ships MD4 outside the legacy provider.
package md4

const (
	// Size is the size of an MD4 checksum in bytes.
	Size = 16

	// BlockSize is the block size of MD4 in bytes.
	BlockSize = 64
)

const (
	init0 = 0x67452301
	init1 = 0xefcdab89
	init2 = 0x98badcfe
	init3 = 0x10325476
)

// padding is read-only; Final feeds a prefix of it through Update.
var padding = [BlockSize]byte{0x80}

// Digest is a streaming MD4 computation. The zero value is not ready for use,
// call New or Reset first. A Digest is not safe for concurrent use.
type Digest struct {
	s      [4]uint32
	lo, hi uint32 // bits consumed, mod 2^64
	x      [BlockSize]byte
	nx     int
}

// New returns an initialised Digest. It satisfies hash.Hash.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// Reset restores the initial constants and clears any buffered input.
func (d *Digest) Reset() {
	d.s = [4]uint32{init0, init1, init2, init3}
	d.lo, d.hi = 0, 0
	d.x = [BlockSize]byte{}
	d.nx = 0
}

func (d *Digest) Size() int { return Size }

func (d *Digest) BlockSize() int { return BlockSize }

func (d *Digest) addBits(n int) {
	bits := uint32(n) << 3
	d.lo += bits
	if d.lo < bits {
		d.hi++
	}
	d.hi += uint32(uint64(n) >> 29)
}

// Update absorbs p. Every complete block is compressed immediately, so fewer
// than BlockSize bytes are ever left pending.
func (d *Digest) Update(p []byte) {
	index := d.nx
	d.addBits(len(p))

	i := 0
	if index+len(p) >= BlockSize {
		i = copy(d.x[index:], p)
		d.s = compress(d.s, d.x[:])
		for ; i+BlockSize <= len(p); i += BlockSize {
			d.s = compress(d.s, p[i:i+BlockSize])
		}
		index = 0
	}
	d.nx = index + copy(d.x[index:], p[i:])
}

// Write is Update in io.Writer form. It never returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	d.Update(p)
	return len(p), nil
}

// WriteString absorbs s without the caller converting it first.
func (d *Digest) WriteString(s string) (int, error) {
	d.Update([]byte(s))
	return len(s), nil
}

// Final pads the message, returns its checksum and resets d so that it can be
// reused for the next message.
func (d *Digest) Final() (sum [Size]byte) {
	defer d.Reset()

	var length [8]byte
	putWords(length[:], d.lo, d.hi)

	r := int(d.lo>>3) & (BlockSize - 1)
	n := 56 - r
	if r >= 56 {
		n = 120 - r
	}
	d.Update(padding[:n])
	d.Update(length[:])
	if d.nx != 0 {
		panic("md4: nx != 0 after final block")
	}

	putWords(sum[:], d.s[:]...)
	return sum
}

// Sum appends the checksum of the data written so far to in. Unlike Final it
// leaves d unchanged.
func (d *Digest) Sum(in []byte) []byte {
	d0 := *d
	sum := d0.Final()
	return append(in, sum[:]...)
}

// Sum returns the MD4 checksum of data.
func Sum(data []byte) [Size]byte {
	var d Digest
	d.Reset()
	d.Update(data)
	return d.Final()
}
