// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinishKexFirstTimeGoesToAuthenticating(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	s.enterDH()
	s.finishKex()
	require.Equal(t, PhaseAuthenticating, s.Phase())
}

// The one permitted backward revisit: Authenticated -> DH ->
// Authenticated for re-key.
func TestRekeyReturnsToAuthenticated(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	s.enterDH()
	s.finishKex()
	require.Equal(t, PhaseAuthenticating, s.Phase())

	s.mu.Lock()
	s.phase = PhaseAuthenticated
	s.mu.Unlock()

	s.enterDH()
	require.Equal(t, PhaseDH, s.Phase())
	s.finishKex()
	require.Equal(t, PhaseAuthenticated, s.Phase())
}

func TestResetSequenceNumbers(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	s.sendSeq = 5
	s.recvSeq = 9
	s.ResetSequenceNumbers()
	require.EqualValues(t, 0, s.SendSeq())
	require.EqualValues(t, 0, s.RecvSeq())
}

func TestPrepareAndActivateKeyChange(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	require.Nil(t, s.CurrentCipherSuite())

	next := &CipherSuite{}
	s.PrepareKeyChange(next)
	require.Nil(t, s.CurrentCipherSuite(), "next must not become current until activateNext")

	s.activateNext()
	require.Same(t, next, s.CurrentCipherSuite())
}

func TestNewKeysActivatesPendingSuiteBothWays(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	s.phase = PhaseAuthenticated
	s.SetWriter(&bufConn{})

	// Outbound: MarkNewKeysSent promotes next -> current.
	pending := &CipherSuite{}
	s.PrepareKeyChange(pending)
	s.MarkNewKeysSent()
	require.Same(t, pending, s.CurrentCipherSuite())

	// Inbound: the default NEWKEYS handler promotes a second pending
	// suite and still lets the packet fall through (NotUsed) so the
	// external kex layer can call finishKex.
	pending2 := &CipherSuite{}
	s.PrepareKeyChange(pending2)
	claimed := s.dispatcher.dispatch(s, msgNewKeys, nil, 0)
	require.False(t, claimed)
	require.Same(t, pending2, s.CurrentCipherSuite())
}

func TestGlobalRequestResolvedByDefaultHandler(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	s.phase = PhaseAuthenticated
	s.SetWriter(&bufConn{})
	s.MarkGlobalRequestSent()
	require.Equal(t, GlobalRequestPending, s.globalPhase)

	claimed := s.dispatcher.dispatch(s, msgRequestSuccess, nil, 0)
	require.False(t, claimed, "no channel layer registered, falls through to UNIMPLEMENTED")
	require.Equal(t, GlobalRequestAccepted, s.globalPhase)
	require.Equal(t, PhaseAuthenticated, s.Phase(), "UNIMPLEMENTED fallback must not fail the session")
}

func TestChannelMembership(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	require.False(t, s.HasChannel(3))
	s.OpenChannel(3)
	require.True(t, s.HasChannel(3))
	s.CloseChannel(3)
	require.False(t, s.HasChannel(3))
}

func TestFailIsSticky(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	first := s.fail(errPeerDisconnected)
	second := s.fail(errOversizePacket)
	require.Equal(t, first, s.Err())
	require.NotEqual(t, second, s.Err(), "the first failure reason wins")
	require.Equal(t, PhaseError, s.Phase())
}
