// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S1 plaintext round-trip.
func TestPlaintextRoundTrip(t *testing.T) {
	sender := NewSession(RoleClient, &Config{})
	sender.phase = PhaseAuthenticated // put both ends somewhere DISCONNECT et al are ALLOWED

	conn := &bufConn{}
	sender.SetWriter(conn)
	sender.Stage([]byte{0x05})
	require.NoError(t, sender.Send())

	wire := conn.Bytes()
	require.Equal(t, uint32(12), beUint32(wire[0:4]), "packet_length")
	require.Equal(t, byte(10), wire[4], "padding_length")

	var seen []byte
	receiver := NewSession(RoleServer, &Config{})
	receiver.phase = PhaseAuthenticated
	receiver.kexPhase = KexFinished // SERVICE_REQUEST (0x05) requires kex finished on a server
	receiver.Register(HandlerBundle{
		Start: msgServiceRequest,
		Handlers: []Handler{0: func(s *Session, typ byte, payload []byte, seq uint32) HandlerResult {
			seen = append([]byte{}, payload...)
			return Used
		}},
	})
	consumed := receiver.Feed(wire)
	require.Equal(t, len(wire), consumed)
	require.Equal(t, []byte{}, seen)
	require.EqualValues(t, 1, receiver.RecvSeq())
}

// S2 fragmented feed: dispatch fires exactly once after the last byte.
func TestFragmentedFeed(t *testing.T) {
	sender := NewSession(RoleClient, &Config{})
	sender.phase = PhaseAuthenticated
	conn := &bufConn{}
	sender.SetWriter(conn)
	sender.Stage([]byte{0x05})
	require.NoError(t, sender.Send())
	wire := conn.Bytes()

	fired := 0
	receiver := NewSession(RoleServer, &Config{})
	receiver.phase = PhaseAuthenticated
	receiver.kexPhase = KexFinished
	receiver.Register(HandlerBundle{
		Start: msgServiceRequest,
		Handlers: []Handler{0: func(s *Session, typ byte, payload []byte, seq uint32) HandlerResult {
			fired++
			return Used
		}},
	})

	total := 0
	for i := 0; i < len(wire); i++ {
		total += receiver.Feed(wire[i : i+1])
	}
	require.Equal(t, len(wire), total)
	require.Equal(t, 1, fired)
}

// S3 filter reject: USERAUTH_REQUEST while INITIAL_KEX/INIT is DENIED.
func TestFilterRejectMovesToError(t *testing.T) {
	receiver := NewSession(RoleServer, &Config{})
	fired := false
	receiver.Register(HandlerBundle{
		Start:    50,
		Handlers: []Handler{0: func(s *Session, typ byte, payload []byte, seq uint32) HandlerResult { fired = true; return Used }},
	})

	sender := NewSession(RoleClient, &Config{})
	conn := &bufConn{}
	sender.SetWriter(conn)
	sender.Stage([]byte{msgUserAuthRequest, 0x00})
	require.NoError(t, sender.Send())

	receiver.Feed(conn.Bytes())
	require.Equal(t, PhaseError, receiver.Phase())
	require.False(t, fired)
	require.Error(t, receiver.Err())
}

// S4 unknown type: an UNIMPLEMENTED reply is generated and the
// session stays put.
func TestUnknownTypeSendsUnimplemented(t *testing.T) {
	sender := NewSession(RoleClient, &Config{})
	sender.phase = PhaseAuthenticated
	senderConn := &bufConn{}
	sender.SetWriter(senderConn)
	sender.Stage([]byte{200})
	require.NoError(t, sender.Send())

	receiver := NewSession(RoleServer, &Config{})
	receiver.phase = PhaseAuthenticated
	receiverConn := &bufConn{}
	receiver.SetWriter(receiverConn)

	receiver.Feed(senderConn.Bytes())
	require.Equal(t, PhaseAuthenticated, receiver.Phase())

	reply := receiverConn.Bytes()
	require.NotEmpty(t, reply)
	require.Equal(t, byte(msgUnimplemented), reply[5])
	require.EqualValues(t, 0, beUint32(reply[6:10]))
}

// S7 oversize: a declared length beyond MaxPacketLen is immediate FATAL.
func TestOversizeLengthIsFatal(t *testing.T) {
	receiver := NewSession(RoleServer, &Config{})
	block := make([]byte, 8) // no cipher negotiated: length-field block size defaults to 8
	beePutUint32(block[:4], MaxPacketLen+1)
	receiver.Feed(block)
	require.Equal(t, PhaseError, receiver.Phase())
	require.ErrorIs(t, receiver.Err(), errOversizePacket)
}

// A declared length too small to cover the rest of the already-decrypted
// length-field block is FATAL rather than a panic on a negative slice
// bound.
func TestUndersizeLengthIsFatal(t *testing.T) {
	receiver := NewSession(RoleServer, &Config{})
	block := make([]byte, 8) // no cipher negotiated: length-field block size defaults to 8
	beePutUint32(block[:4], 0)
	receiver.Feed(block)
	require.Equal(t, PhaseError, receiver.Phase())
	require.ErrorIs(t, receiver.Err(), errInvalidPacketLength)
}

// Sequence monotonicity: consecutive accepted packets increment recvSeq
// by exactly one regardless of dispatch outcome.
func TestSequenceMonotonicity(t *testing.T) {
	sender := NewSession(RoleClient, &Config{})
	sender.phase = PhaseAuthenticated
	conn := &bufConn{}
	sender.SetWriter(conn)
	for i := 0; i < 3; i++ {
		sender.Stage([]byte{msgIgnore})
		require.NoError(t, sender.Send())
	}

	receiver := NewSession(RoleServer, &Config{})
	receiver.phase = PhaseAuthenticated
	receiver.Feed(conn.Bytes())
	require.EqualValues(t, 3, receiver.RecvSeq())
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func beePutUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
