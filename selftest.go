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
	"encoding/hex"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Vector is a known message and its hex encoded MD4 checksum.
type Vector struct {
	Input  string
	Digest string
}

var rfc1320 = []Vector{
	{"", "31d6cfe0d16ae931b73c59d7e0c089c0"},
	{"a", "bde52cb31de33e46245e05fbdbd6fb24"},
	{"abc", "a448017aaf21d8525fc10ae87aa6729d"},
	{"message digest", "d9130a8164549fe818874806e1c7014b"},
	{"abcdefghijklmnopqrstuvwxyz", "d79e1c308aa5bbcdeea8ed63df412da9"},
	{"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789", "043f8582f241db351ce627e153e7f0e4"},
	{"12345678901234567890123456789012345678901234567890123456789012345678901234567890", "e33b4ddc9c38f2199c3e7b164fcc0536"},
}

// Vectors returns the test suite from RFC 1320 appendix A.5.
func Vectors() []Vector {
	return append([]Vector(nil), rfc1320...)
}

// SelfTest runs every RFC 1320 vector through h and reports each mismatch.
// h is reset on return.
func SelfTest(h Hasher) error {
	var result *multierror.Error
	for _, v := range rfc1320 {
		if err := h.Update([]byte(v.Input)); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: update %q: %v", ErrSelfTest, v.Input, err))
			_ = h.Reset()
			continue
		}
		sum, err := h.Final()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: final %q: %v", ErrSelfTest, v.Input, err))
			_ = h.Reset()
			continue
		}
		if got := hex.EncodeToString(sum[:]); got != v.Digest {
			result = multierror.Append(result, fmt.Errorf("%w: %s(%q) = %s, want %s", ErrSelfTest, h.Engine(), v.Input, got, v.Digest))
		}
	}
	if err := h.Reset(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
