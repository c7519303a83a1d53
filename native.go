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

// #include <stdlib.h>
// #include <openssl/err.h>
// #include <openssl/evp.h>
// #include <openssl/provider.h>
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/hashicorp/go-multierror"
)

var (
	legacyCtxMu sync.Mutex
	legacyCtx   *libraryContext
)

// libraryContext is an OSSL_LIB_CTX together with the providers loaded
// into it.
type libraryContext struct {
	ctx       *C.OSSL_LIB_CTX
	providers map[string]*C.OSSL_PROVIDER
	mu        sync.Mutex
}

func newLibraryContext(providers ...string) (*libraryContext, error) {
	ctx := C.OSSL_LIB_CTX_new()
	if ctx == nil {
		return nil, errorFromErrorQueue()
	}
	c := &libraryContext{ctx: ctx, providers: make(map[string]*C.OSSL_PROVIDER)}
	for _, name := range providers {
		if err := c.loadProvider(name); err != nil {
			_ = c.close()
			return nil, err
		}
	}
	return c, nil
}

func (c *libraryContext) loadProvider(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providers[name]; exists {
		return nil
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	provider := C.OSSL_PROVIDER_load(c.ctx, cname)
	if provider == nil {
		return fmt.Errorf("%w: loading %s provider: %v", ErrNativeUnavailable, name, errorFromErrorQueue())
	}
	c.providers[name] = provider
	return nil
}

func (c *libraryContext) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result *multierror.Error
	for name, p := range c.providers {
		if C.OSSL_PROVIDER_unload(p) != 1 {
			result = multierror.Append(result, fmt.Errorf("unloading %s provider: %w", name, errorFromErrorQueue()))
		}
		delete(c.providers, name)
	}
	if c.ctx != nil {
		C.OSSL_LIB_CTX_free(c.ctx)
		c.ctx = nil
	}
	return result.ErrorOrNil()
}

// legacyLibraryContext returns the process wide context holding the default
// and legacy providers, creating it on first use.
func legacyLibraryContext() (*libraryContext, error) {
	legacyCtxMu.Lock()
	defer legacyCtxMu.Unlock()
	if legacyCtx == nil {
		c, err := newLibraryContext("default", "legacy")
		if err != nil {
			return nil, err
		}
		runtime.SetFinalizer(c, func(c *libraryContext) {
			if err := c.close(); err != nil {
				logger.WithError(err).Warn("md4: releasing openssl library context")
			}
		})
		legacyCtx = c
	}
	return legacyCtx, nil
}

func fetchMD4(allowLegacy bool) (*C.EVP_MD, error) {
	if !allowLegacy {
		return nil, ErrLegacyDigest
	}
	libCtx, err := legacyLibraryContext()
	if err != nil {
		return nil, err
	}
	cname := C.CString("MD4")
	defer C.free(unsafe.Pointer(cname))
	md := C.EVP_MD_fetch(libCtx.ctx, cname, nil)
	if md == nil {
		return nil, fmt.Errorf("%w: %v", ErrNativeUnavailable, errorFromErrorQueue())
	}
	return md, nil
}

// native is an MD4 job running inside OpenSSL.
type native struct {
	md       *C.EVP_MD
	ctx      *C.EVP_MD_CTX
	finished bool
}

func newNative(allowLegacy bool) (Hasher, error) {
	md, err := fetchMD4(allowLegacy)
	if err != nil {
		return nil, err
	}
	ctx := C.EVP_MD_CTX_new()
	if ctx == nil {
		C.EVP_MD_free(md)
		return nil, errorFromErrorQueue()
	}
	job := &native{md: md, ctx: ctx}
	runtime.SetFinalizer(job, func(j *native) {
		j.Close()
	})
	if err := job.Reset(); err != nil {
		job.Close()
		return nil, err
	}
	return job, nil
}

// Reset initialises (and therefore resets) the digest
func (n *native) Reset() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if int(C.EVP_DigestInit_ex(n.ctx, n.md, nil)) != 1 {
		return errorFromErrorQueue()
	}
	n.finished = false
	return nil
}

func (n *native) Close() {
	if n.ctx != nil {
		C.EVP_MD_CTX_free(n.ctx)
		n.ctx = nil
	}
	if n.md != nil {
		C.EVP_MD_free(n.md)
		n.md = nil
	}
}

func (n *native) Update(data []byte) error {
	if n.finished {
		return ErrDigestFinalised
	}
	if len(data) == 0 {
		return nil
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if C.EVP_DigestUpdate(n.ctx, unsafe.Pointer(&data[0]), C.size_t(len(data))) != 1 {
		return errorFromErrorQueue()
	}
	return nil
}

func (n *native) Write(p []byte) (int, error) {
	if err := n.Update(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Final finalises the digest job and re-initialises it for the next message.
// If re-initialising fails the job stays finalised until Reset succeeds.
func (n *native) Final() (result [Size]byte, err error) {
	if n.finished {
		return result, ErrDigestFinalised
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	n.finished = true
	var written C.uint
	if C.EVP_DigestFinal_ex(n.ctx, (*C.uchar)(unsafe.Pointer(&result[0])), &written) != 1 {
		return [Size]byte{}, errorFromErrorQueue()
	}
	if int(written) != Size {
		return [Size]byte{}, fmt.Errorf("openssl: md4 wrote %d bytes, want %d", written, Size)
	}
	if err := n.Reset(); err != nil {
		logger.WithError(err).Warn("md4: re-initialising native digest")
	}
	return result, nil
}

func (n *native) Size() int { return Size }

func (n *native) BlockSize() int { return int(C.EVP_MD_get_block_size(n.md)) }

func (n *native) Engine() Engine { return EngineNative }

// errorFromErrorQueue drains the calling thread's OpenSSL error queue.
func errorFromErrorQueue() error {
	var errs []string
	buf := make([]C.char, 256)
	for {
		code := C.ERR_get_error()
		if code == 0 {
			break
		}
		C.ERR_error_string_n(code, &buf[0], C.size_t(len(buf)))
		errs = append(errs, C.GoString(&buf[0]))
	}
	if len(errs) == 0 {
		return errors.New("openssl: unknown error")
	}
	return fmt.Errorf("openssl: %s", strings.Join(errs, "\n"))
}
