// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import "github.com/blinksh/libssh/internal/capture"

// Feed is the Packet Reassembler's entry point (§4.3). It is called
// by the host's byte-stream transport with whatever bytes just
// arrived — any suffix of a packet, including a fragment smaller than
// one cipher block — and returns how many of them it consumed.
//
// Grounded on ssh_packet_socket_callback in the original
// implementation's packet.c: a loop over the three-state automaton
// rather than recursion, so an arbitrarily long coalesced read never
// grows the call stack.
func (s *Session) Feed(data []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseError {
		return 0
	}
	if s.state == stateProcessing {
		// Reentrant call from within a handler; the guard exists so a
		// handler that writes back into the same session cannot
		// recurse into the reassembler (§5 Reentrancy).
		return 0
	}

	s.inBuf.Append(data)
	consumed := 0

	for {
		switch s.state {
		case stateInit:
			n, err := s.tryReadLength()
			if err != nil {
				s.failLocked(err)
				return consumed
			}
			if n == 0 {
				return consumed
			}
			s.state = stateSizeRead

		case stateSizeRead:
			n, err := s.tryProcessPacket()
			if err != nil {
				s.failLocked(err)
				return consumed
			}
			if n == 0 {
				return consumed
			}
			consumed += n
			s.state = stateInit

		case stateProcessing:
			return consumed
		}

		if s.inBuf.Len() == 0 {
			return consumed
		}
	}
}

// tryReadLength attempts the INIT -> SIZEREAD transition: decrypt one
// length-field block and record the declared packet length. Returns 0
// (without consuming) if fewer than lengthFieldBlockSize bytes are
// buffered.
func (s *Session) tryReadLength() (int, error) {
	lfbs := s.current.lengthFieldBlockSize(false)
	if s.inBuf.Len() < lfbs {
		return 0, nil
	}

	out := make([]byte, lfbs)
	length := decryptLength(s.current, s.recvSeq, s.inBuf.Bytes()[:lfbs], out)

	if length > s.config.MaxPacketLen {
		return 0, errOversizePacket
	}
	// The remainder of the length-field block beyond the 4-byte length
	// itself (lfbs-4 bytes) was already decrypted into out and must fit
	// inside the declared payload, mirroring the original
	// implementation's to_be_read = packet_len - lenfield_blocksize +
	// sizeof(uint32_t) going negative.
	if length < uint32(lfbs-4) {
		return 0, errInvalidPacketLength
	}
	s.inPkt.length = length
	// out holds the already-decrypted head block; a stream cipher's
	// keystream position has already advanced past these bytes, so
	// tryProcessPacket must reuse them rather than decrypt them again.
	s.inPkt.head = out
	return lfbs, nil
}

// tryProcessPacket attempts the SIZEREAD -> INIT transition. Returns
// (0, nil) if the full packet (plus MAC) has not yet arrived.
func (s *Session) tryProcessPacket() (int, error) {
	macLen := s.current.macLen(false)
	lfbs := s.current.lengthFieldBlockSize(false)
	total := 4 + int(s.inPkt.length) + macLen
	if s.inBuf.Len() < total {
		return 0, nil
	}

	raw := s.inBuf.Bytes()[:total]
	var clear []byte
	var payload []byte

	if isAEAD(s.current, false) {
		lengthField := raw[:4]
		ciphertextAndTag := raw[4:total]
		opened, err := aeadOpen(s.current, s.recvSeq, lengthField, ciphertextAndTag)
		if err != nil {
			return 0, errMACFailure
		}
		clear = opened
	} else {
		// out is the whole cleartext packet, 4-byte length included,
		// since the sender's MAC covers the length field too.
		out := make([]byte, 4+int(s.inPkt.length))
		copy(out[:lfbs], s.inPkt.head)
		if lfbs < len(out) {
			decryptRest(s.current, out[lfbs:], raw[lfbs:4+int(s.inPkt.length)])
		}
		tag := raw[total-macLen : total]
		if !verifyAndStrip(s.current, s.recvSeq, out, tag) {
			return 0, errMACFailure
		}
		clear = out[4:]
	}

	if len(clear) < 1 {
		return 0, errInvalidPadding
	}
	padLen := int(clear[0])
	if padLen < 4 || padLen > len(clear)-1 {
		return 0, errInvalidPadding
	}
	payload = clear[1 : len(clear)-padLen]

	if s.current != nil && s.current.InflateIn && len(payload) > 0 {
		decompressed, err := s.inflater().Decompress(payload)
		if err != nil {
			return 0, err
		}
		payload = decompressed
	}

	if s.capture != nil {
		s.capture.Write(capture.DirIn, append([]byte{}, raw...))
	}

	s.inBuf.Consume(total)
	s.counters.addIn(total)

	if len(payload) == 0 {
		s.recvSeq++
		return total, nil
	}

	typ := payload[0]
	verdict := incomingFilter(s, typ)
	seq := s.recvSeq
	s.recvSeq++

	switch verdict {
	case filterDenied:
		return total, newFilterDeniedError(typ)
	case filterUnknown:
		s.state = stateProcessing
		s.mu.Unlock()
		s.sendUnimplemented(seq)
		s.mu.Lock()
		s.state = stateSizeRead
		return total, nil
	}

	s.inPkt.typ = typ
	s.inPkt.valid = true
	s.state = stateProcessing
	s.mu.Unlock()
	s.dispatcher.dispatch(s, typ, payload[1:], seq)
	s.mu.Lock()
	s.state = stateSizeRead

	return total, nil
}

// inflater lazily creates the session's inbound decompression
// context, which must persist across packets (§4.2).
func (s *Session) inflater() *decompressor {
	if s.inflate == nil {
		s.inflate = newDecompressor(int(s.config.MaxPacketLen))
	}
	return s.inflate
}

// newFilterDeniedError builds the error for a filterDenied verdict; the
// errtrace wrap itself happens once, centrally, inside failLocked.
func newFilterDeniedError(typ byte) error {
	return &filterDeniedError{typ: typ}
}

type filterDeniedError struct{ typ byte }

func (e *filterDeniedError) Error() string {
	return "ssh: packet type " + messageName(e.typ) + " denied in current phase"
}
