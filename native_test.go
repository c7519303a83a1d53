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

//go:build openssl

package md4

import (
	"bytes"
	"errors"
	"testing"
)

func openNativeOrSkip(t *testing.T) Hasher {
	t.Helper()
	h, err := NewHasher(Config{Engine: EngineNative, AllowLegacyProvider: true})
	if errors.Is(err, ErrNativeUnavailable) {
		t.Skipf("openssl has no md4: %s", err)
	}
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h
}

func TestNativeRequiresLegacyProvider(t *testing.T) {
	_, err := NewHasher(Config{Engine: EngineNative})
	expectError(t, err, ErrLegacyDigest)
}

func TestNativeMatchesManaged(t *testing.T) {
	h := openNativeOrSkip(t)
	if h.Engine() != EngineNative || h.BlockSize() != BlockSize {
		t.Fatalf("unexpected hasher %s block=%d", h.Engine(), h.BlockSize())
	}
	for _, n := range []int{0, 1, 55, 56, 63, 64, 65, 1000} {
		msg := message(n)
		// best for this to have no common factors with the block size, so
		// both engines buffer partial blocks
		for rest := msg; len(rest) > 0; {
			chunk := rest
			if len(chunk) > 33 {
				chunk = chunk[:33]
			}
			if _, err := h.Write(chunk); err != nil {
				t.Fatal(err)
			}
			rest = rest[len(chunk):]
		}
		got, err := h.Final()
		if err != nil {
			t.Fatal(err)
		}
		if want := Sum(msg); !bytes.Equal(got[:], want[:]) {
			t.Fatalf("%d bytes: native %x, managed %x", n, got, want)
		}
	}
}

func TestNativeFinalResets(t *testing.T) {
	h := openNativeOrSkip(t)
	if err := h.Update([]byte("discarded")); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Final(); err != nil {
		t.Fatal(err)
	}
	if err := h.Update([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	sum, err := h.Final()
	if err != nil {
		t.Fatal(err)
	}
	checkDigest(t, sum, "a448017aaf21d8525fc10ae87aa6729d")
}

func TestAutoPrefersNative(t *testing.T) {
	captureLogs(t)
	probe := openNativeOrSkip(t)
	probe.Close()

	h, err := NewHasher(Config{Engine: EngineAuto, AllowLegacyProvider: true})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	if h.Engine() != EngineNative {
		t.Fatalf("auto selected %s", h.Engine())
	}
}
