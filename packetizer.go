// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/blinksh/libssh/internal/capture"
)

// Stage appends payload (the message type byte followed by its body)
// to the outbound staging buffer. Send then runs the Outgoing
// Packetizer pipeline over everything staged so far (§4.6,
// "Packetizer entry: send(session) on the session's staged outbound
// buffer").
func (s *Session) Stage(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outBuf.Append(payload)
}

// Send runs the Outgoing Packetizer over the staged payload and
// writes the framed packet to the session's writer.
func (s *Session) Send() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendStaged()
}

// sendStaged implements the six-step pipeline of §4.6. Callers must
// already hold s.mu.
func (s *Session) sendStaged() error {
	if s.phase == PhaseError {
		return s.lastErr
	}

	payload := s.outBuf.Bytes()

	// 1. Compress, if negotiated and payload non-empty.
	if s.current != nil && s.current.InflateOut && len(payload) > 0 {
		compressed, err := s.deflater().Compress(payload)
		if err != nil {
			return s.failLocked(err)
		}
		payload = compressed
	}

	blockSize := s.current.blockSize(true)
	lfbs := s.current.lengthFieldBlockSize(true)

	// 2. Compute padding so that (4-byte length field + 1 byte padlen
	// field + payload + padding) - lfbs is a multiple of blockSize,
	// padding >= 4, bumped by one block if that floor
	// comes out under 4 (§4.6 step 2, mirroring packet_send2's
	// padding formula in the original implementation).
	padLen := blockSize - ((blockSize - lfbs + len(payload) + 5) % blockSize)
	if padLen < 4 {
		padLen += blockSize
	}

	padding := make([]byte, padLen)
	if s.current != nil && (s.current.OutCipher != nil) {
		if _, err := io.ReadFull(s.randSource(), padding); err != nil {
			return s.failLocked(err)
		}
	}

	// 3. Assemble padlen||payload||padding, then prepend the 4-byte
	// total length, mirroring ssh_buffer_prepend_data in the original
	// implementation's packet_send2 rather than a fixed-offset slice
	// build.
	totalLen := 1 + len(payload) + padLen
	scratch := newPacketBuffer()
	scratch.Append([]byte{byte(padLen)})
	scratch.Append(payload)
	scratch.Append(padding)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(totalLen))
	scratch.Prepend(lenBuf[:])
	clear := scratch.Bytes()

	seq := s.sendSeq

	var wire []byte
	if isAEAD(s.current, true) {
		lengthField := encryptLength(s.current, seq, clear[:4])
		ciphertextAndTag := aeadSeal(s.current, seq, lengthField, clear[4:])
		wire = append(wire, lengthField...)
		wire = append(wire, ciphertextAndTag...)
	} else {
		// 4. Encrypt in place; produce the MAC over (send_seq ||
		// cleartext).
		tag := encryptAndMAC(s.current, seq, clear)
		// 5. Append MAC.
		wire = append(clear, tag...)
	}

	if s.writer == nil {
		return s.failLocked(errNoWriter)
	}
	if _, err := s.writer.Write(wire); err != nil {
		return s.failLocked(err)
	}

	if s.capture != nil {
		s.capture.Write(capture.DirOut, append([]byte{}, wire...))
	}

	s.counters.addOut(len(wire))
	s.sendSeq++

	// 6. Reset the staging buffer.
	s.outBuf.Reinit()
	return nil
}

// deflater lazily creates the session's outbound compression context,
// which must persist across packets (§4.2).
func (s *Session) deflater() *compressor {
	if s.deflate == nil {
		c, err := newCompressor(compressionLevel)
		if err != nil {
			// flate.NewWriter only errors on an invalid level constant.
			panic(err)
		}
		s.deflate = c
	}
	return s.deflate
}

// compressionLevel matches the original implementation's zlib
// default.
const compressionLevel = 6

func (s *Session) randSource() io.Reader {
	if s.config.Rand != nil {
		return s.config.Rand
	}
	return rand.Reader
}
