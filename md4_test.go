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

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/rand"
	"testing"

	xmd4 "golang.org/x/crypto/md4"
)

func checkDigest(t *testing.T, got [Size]byte, want string) {
	t.Helper()
	if s := hex.EncodeToString(got[:]); s != want {
		t.Fatalf("digest %s, want %s", s, want)
	}
}

func reference(data []byte) [Size]byte {
	var sum [Size]byte
	h := xmd4.New()
	h.Write(data)
	copy(sum[:], h.Sum(nil))
	return sum
}

func message(n int) []byte {
	msg := make([]byte, n)
	for i := range msg {
		msg[i] = byte(i*31 + 7)
	}
	return msg
}

func TestVectors(t *testing.T) {
	for _, v := range Vectors() {
		t.Run(fmt.Sprintf("%q", v.Input), func(t *testing.T) {
			checkDigest(t, Sum([]byte(v.Input)), v.Digest)

			d := New()
			d.Update([]byte(v.Input))
			checkDigest(t, d.Final(), v.Digest)
		})
	}
}

func TestChunkingInvariance(t *testing.T) {
	msg := message(1000)
	want := Sum(msg)
	for _, size := range []int{1, 7, 63, 64, 65} {
		t.Run(fmt.Sprintf("chunk %d", size), func(t *testing.T) {
			d := New()
			for i := 0; i < len(msg); i += size {
				end := i + size
				if end > len(msg) {
					end = len(msg)
				}
				d.Update(msg[i:end])
				if d.nx >= BlockSize {
					t.Fatalf("%d bytes left pending", d.nx)
				}
			}
			if got := d.Final(); got != want {
				t.Fatalf("chunked digest %x, want %x", got, want)
			}
		})
	}
}

func TestDigestLength(t *testing.T) {
	for _, n := range []int{0, 1, 64, 1000} {
		d := New()
		d.Update(message(n))
		if got := d.Sum(nil); len(got) != Size {
			t.Fatalf("len(Sum) = %d for %d byte input", len(got), n)
		}
	}
	if New().Size() != Size || New().BlockSize() != BlockSize {
		t.Fatal("Size/BlockSize do not match constants")
	}
}

func TestPaddingBoundaries(t *testing.T) {
	for _, n := range []int{55, 56, 57, 63, 64, 119, 120, 127, 128, 183, 184} {
		t.Run(fmt.Sprintf("%d bytes", n), func(t *testing.T) {
			msg := message(n)
			if got, want := Sum(msg), reference(msg); got != want {
				t.Fatalf("digest %x, want %x", got, want)
			}
		})
	}
}

func TestMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1320))
	for i := 0; i < 200; i++ {
		msg := make([]byte, rng.Intn(4*BlockSize+1))
		rng.Read(msg)

		d := New()
		for rest := msg; len(rest) > 0; {
			n := rng.Intn(len(rest)) + 1
			d.Update(rest[:n])
			rest = rest[n:]
		}
		if got, want := d.Final(), reference(msg); got != want {
			t.Fatalf("len %d: digest %x, want %x", len(msg), got, want)
		}
	}
}

func TestReuseAfterFinal(t *testing.T) {
	d := New()
	d.Update([]byte("the first message, long enough to leave some bytes pending after a block"))
	d.Final()
	if *d != *New() {
		t.Fatal("Final did not restore the initial state")
	}

	d.Update([]byte("message digest"))
	checkDigest(t, d.Final(), "d9130a8164549fe818874806e1c7014b")
}

func TestSumLeavesStateUntouched(t *testing.T) {
	d := New()
	d.Update([]byte("ab"))
	before := *d
	if got, want := d.Sum(nil), reference([]byte("ab")); !bytes.Equal(got, want[:]) {
		t.Fatalf("Sum = %x, want %x", got, want)
	}
	if *d != before {
		t.Fatal("Sum modified the digest")
	}
	d.Update([]byte("c"))
	checkDigest(t, d.Final(), "a448017aaf21d8525fc10ae87aa6729d")

	prefix := []byte("md4:")
	if out := New().Sum(prefix); !bytes.HasPrefix(out, prefix) || len(out) != len(prefix)+Size {
		t.Fatalf("Sum did not append to its argument: %x", out)
	}
}

func TestShortUpdateOnlyBuffers(t *testing.T) {
	d := New()
	initial := d.s
	d.Update([]byte("0123456789"))
	d.Update([]byte("abc"))
	if d.s != initial {
		t.Fatal("state changed before a full block was available")
	}
	if d.nx != 13 || !bytes.Equal(d.x[:13], []byte("0123456789abc")) {
		t.Fatalf("pending = %q", d.x[:d.nx])
	}
	if d.lo != 13*8 || d.hi != 0 {
		t.Fatalf("bit count = %d:%d", d.hi, d.lo)
	}
}

func TestBitCounterCarry(t *testing.T) {
	d := New()
	d.lo = 0xfffffff8
	d.Update([]byte("ab"))
	if d.lo != 8 || d.hi != 1 {
		t.Fatalf("bit count = %#x:%#x, want 0x1:0x8", d.hi, d.lo)
	}

	var length [8]byte
	putWords(length[:], d.lo, d.hi)
	if want := []byte{8, 0, 0, 0, 1, 0, 0, 0}; !bytes.Equal(length[:], want) {
		t.Fatalf("length field % x, want % x", length, want)
	}
}

func TestWriteString(t *testing.T) {
	d := New()
	n, err := d.WriteString("abc")
	if err != nil || n != 3 {
		t.Fatalf("WriteString = %d, %v", n, err)
	}
	checkDigest(t, d.Final(), "a448017aaf21d8525fc10ae87aa6729d")
}

func BenchmarkUpdate(b *testing.B) {
	for _, size := range []int{8, 1024, 8192} {
		buf := message(size)
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			d := New()
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				d.Update(buf)
			}
		})
	}
}

func BenchmarkFinal(b *testing.B) {
	d := New()
	buf := message(100)
	for i := 0; i < b.N; i++ {
		d.Update(buf)
		d.Final()
	}
}
