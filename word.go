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

import "encoding/binary"

// putWords writes each word to dst as four bytes, least significant first.
func putWords(dst []byte, w ...uint32) {
	_ = dst[4*len(w)-1]
	for i, v := range w {
		binary.LittleEndian.PutUint32(dst[4*i:], v)
	}
}

// words decodes one block into sixteen little-endian message words.
func words(x *[16]uint32, src []byte) {
	_ = src[BlockSize-1]
	for i := range x {
		x[i] = binary.LittleEndian.Uint32(src[4*i:])
	}
}
