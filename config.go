// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"io"

	"github.com/blinksh/libssh/internal/capture"
)

// Config carries the ambient, in-process knobs a Session needs.
// Mirrors handshakeTransport.config in the teacher fork: reading
// these values off disk (flags, TOML, YAML, ...) is an external
// collaborator's job, not the CORE's.
type Config struct {
	// MaxPacketLen overrides MaxPacketLen if non-zero.
	MaxPacketLen uint32

	// RekeyThreshold, if non-zero, is the number of bytes after which
	// the external kex layer should be nudged to re-key. The CORE
	// only exposes the byte/packet counters a kex layer would compare
	// against this threshold; it never triggers a re-key itself.
	RekeyThreshold int64

	// Rand is the source of randomness for padding bytes (§4.6). Nil
	// means crypto/rand.Reader.
	Rand io.Reader

	// Logger, if non-nil, receives structured session diagnostics.
	Logger Logger

	// Capture, if non-nil, receives a copy of every reassembled and
	// packetized binary packet.
	Capture capture.Sink
}

func (c *Config) setDefaults() {
	if c.MaxPacketLen == 0 {
		c.MaxPacketLen = MaxPacketLen
	}
}
