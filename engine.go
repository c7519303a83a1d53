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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// EnvEngine names the environment variable read by ConfigFromEnv.
const EnvEngine = "GO_MD4_ENGINE"

var (
	ErrNativeUnavailable = errors.New("native md4 unavailable")
	ErrLegacyDigest      = errors.New("legacy digest requested")
	ErrDigestFinalised   = errors.New("digest job already finalised")
	ErrUnknownEngine     = errors.New("unknown md4 engine")
	ErrSelfTest          = errors.New("md4 self-test failed")
)

var logger = log.StandardLogger()

// SetLogger routes engine selection messages to l. A nil l restores the
// logrus standard logger. It must not be called concurrently with NewHasher.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.StandardLogger()
	}
	logger = l
}

// Engine selects the implementation behind a Hasher.
type Engine int

const (
	// EngineAuto prefers the native digest and falls back to the managed one.
	EngineAuto Engine = iota
	// EngineNative uses OpenSSL. It is only available in builds tagged openssl.
	EngineNative
	// EngineManaged uses the pure Go Digest.
	EngineManaged
)

func (e Engine) String() string {
	switch e {
	case EngineAuto:
		return "auto"
	case EngineNative:
		return "native"
	case EngineManaged:
		return "managed"
	}
	return fmt.Sprintf("Engine(%d)", int(e))
}

// ParseEngine maps "auto", "native" or "managed" (case insensitive) to an
// Engine. The empty string selects EngineAuto.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EngineAuto, nil
	case "native", "openssl":
		return EngineNative, nil
	case "managed", "go":
		return EngineManaged, nil
	}
	return EngineAuto, fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

type Config struct {
	Engine Engine
	// AllowLegacyProvider permits loading the OpenSSL legacy provider, which
	// is where OpenSSL 3 keeps MD4.
	AllowLegacyProvider bool
	// SkipSelfTest trusts the native digest without running the RFC 1320
	// vectors through it first.
	SkipSelfTest bool
}

// ConfigFromEnv returns a Config whose Engine comes from GO_MD4_ENGINE. The
// legacy provider is allowed, since requesting MD4 at all implies it.
func ConfigFromEnv() (Config, error) {
	engine, err := ParseEngine(os.Getenv(EnvEngine))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvEngine, err)
	}
	return Config{Engine: engine, AllowLegacyProvider: true}, nil
}

// Hasher is a streaming MD4 job. Final returns the checksum and leaves the
// job ready for the next message. Close releases native resources; a Hasher
// must not be used after Close.
type Hasher interface {
	io.Writer
	Update(data []byte) error
	Final() ([Size]byte, error)
	Reset() error
	Close()
	Size() int
	BlockSize() int
	Engine() Engine
}

// NewHasher returns a Hasher backed by the engine cfg selects.
func NewHasher(cfg Config) (Hasher, error) {
	switch cfg.Engine {
	case EngineManaged:
		return newManaged(), nil
	case EngineNative:
		return openNative(cfg)
	case EngineAuto:
		h, err := openNative(cfg)
		if err != nil {
			logger.WithError(err).WithField("engine", EngineManaged).
				Info("md4: native digest rejected, using managed fallback")
			return newManaged(), nil
		}
		logger.WithField("engine", EngineNative).Debug("md4: using native digest")
		return h, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, cfg.Engine)
}

func openNative(cfg Config) (Hasher, error) {
	h, err := newNative(cfg.AllowLegacyProvider)
	if err != nil {
		return nil, err
	}
	if cfg.SkipSelfTest {
		return h, nil
	}
	if err := SelfTest(h); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// Checksum computes the MD4 checksum of data with the engine cfg selects.
func Checksum(data []byte, cfg Config) (result [Size]byte, err error) {
	hash, err := NewHasher(cfg)
	if err != nil {
		return result, err
	}
	defer hash.Close()
	if err = hash.Update(data); err != nil {
		return result, err
	}
	return hash.Final()
}

type managed struct {
	d Digest
}

func newManaged() *managed {
	m := new(managed)
	m.d.Reset()
	return m
}

func (m *managed) Write(p []byte) (int, error) { return m.d.Write(p) }

func (m *managed) Update(data []byte) error {
	m.d.Update(data)
	return nil
}

func (m *managed) Final() ([Size]byte, error) { return m.d.Final(), nil }

func (m *managed) Reset() error {
	m.d.Reset()
	return nil
}

// Close clears any buffered input; there is nothing else to release.
func (m *managed) Close() { m.d.Reset() }

func (m *managed) Size() int { return Size }

func (m *managed) BlockSize() int { return BlockSize }

func (m *managed) Engine() Engine { return EngineManaged }
