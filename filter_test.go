// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Filter completeness (§8 property 6): every (phase-tuple, type) pair
// returns one of the three defined verdicts, never something else,
// for every message type and every combination of role, session
// phase and kex sub-phase; the other sub-phases stay at their
// NewSession defaults.
func TestFilterCompleteness(t *testing.T) {
	phases := []SessionPhase{PhaseInitialKex, PhaseDH, PhaseAuthenticating, PhaseAuthenticated, PhaseError}
	kexPhases := []KexPhase{KexInit, KexInitSent, KexNewkeysSent, KexFinished}
	roles := []Role{RoleClient, RoleServer}

	for _, role := range roles {
		for _, phase := range phases {
			for _, kex := range kexPhases {
				s := NewSession(role, &Config{})
				s.phase = phase
				s.kexPhase = kex
				for typ := 0; typ < 256; typ++ {
					v := incomingFilter(s, byte(typ))
					require.Contains(t, []filterVerdict{filterAllowed, filterDenied, filterUnknown}, v)
				}
			}
		}
	}
}

// Always-allowed transport messages (§4.4) are allowed in every phase.
func TestFilterAlwaysAllowed(t *testing.T) {
	always := []byte{msgDisconnect, msgIgnore, msgDebug, msgUnimplemented}
	for _, phase := range []SessionPhase{PhaseInitialKex, PhaseDH, PhaseAuthenticating, PhaseAuthenticated} {
		s := NewSession(RoleClient, &Config{})
		s.phase = phase
		for _, typ := range always {
			require.Equal(t, filterAllowed, incomingFilter(s, typ))
		}
	}
}

// Role rejection is a subset of the filter (§4.4): a server-only
// message is DENIED on a client, and vice versa.
func TestFilterRoleRejection(t *testing.T) {
	// KEXDH_INIT is received by a server (sent by the client); a
	// client receiving one is a protocol violation.
	client := NewSession(RoleClient, &Config{})
	client.phase = PhaseDH
	client.kexPhase = KexInit
	require.Equal(t, filterDenied, incomingFilter(client, msgKexDHInit), "KEXDH_INIT is server-only")

	server := NewSession(RoleServer, &Config{})
	server.phase = PhaseDH
	server.kexPhase = KexInit
	require.Equal(t, filterAllowed, incomingFilter(server, msgKexDHInit), "server accepts KEXDH_INIT in DH/INIT")

	// KEXDH_REPLY is received by a client (sent by the server); a
	// server receiving one is a protocol violation.
	server2 := NewSession(RoleServer, &Config{})
	server2.phase = PhaseDH
	server2.kexPhase = KexInitSent
	require.Equal(t, filterDenied, incomingFilter(server2, msgKexDHReply), "KEXDH_REPLY is client-only")
}

// Unlisted types return UNKNOWN.
func TestFilterUnknownType(t *testing.T) {
	s := NewSession(RoleClient, &Config{})
	require.Equal(t, filterUnknown, incomingFilter(s, 210))
}

// GSSAPI_EXCHANGE_COMPLETE/ERROR/ERRTOK are unconditionally ALLOWED
// regardless of role or phase, matching the original's "TODO Not
// filtered" rows; GSSAPI_MIC is the one GSSAPI type that IS filtered:
// server-only, DH finished, and AUTHENTICATING.
func TestFilterGSSAPI(t *testing.T) {
	unconditional := []byte{msgUserAuthGSSAPIExchangeComplete, msgUserAuthGSSAPIError, msgUserAuthGSSAPIErrtok}
	for _, typ := range unconditional {
		s := NewSession(RoleClient, &Config{})
		s.phase = PhaseInitialKex
		require.Equal(t, filterAllowed, incomingFilter(s, typ))
	}

	client := NewSession(RoleClient, &Config{})
	client.phase = PhaseAuthenticating
	client.kexPhase = KexFinished
	require.Equal(t, filterDenied, incomingFilter(client, msgUserAuthGSSAPIMIC), "MIC is server-only")

	serverWrongKex := NewSession(RoleServer, &Config{})
	serverWrongKex.phase = PhaseAuthenticating
	serverWrongKex.kexPhase = KexInit
	require.Equal(t, filterDenied, incomingFilter(serverWrongKex, msgUserAuthGSSAPIMIC), "DH must be finished")

	server := NewSession(RoleServer, &Config{})
	server.phase = PhaseAuthenticating
	server.kexPhase = KexFinished
	require.Equal(t, filterAllowed, incomingFilter(server, msgUserAuthGSSAPIMIC))
}

// The sub-phase mutators are the only way outside the package to make
// SERVICE_ACCEPT and NEWKEYS filter ALLOWED; without them these rows
// would be unreachable from any external kex/auth layer.
func TestFilterSubPhaseMutators(t *testing.T) {
	client := NewSession(RoleClient, &Config{})
	client.phase = PhaseAuthenticating
	client.kexPhase = KexFinished
	require.Equal(t, filterDenied, incomingFilter(client, msgServiceAccept), "no SERVICE_REQUEST sent yet")
	client.MarkAuthServiceRequested()
	require.Equal(t, filterAllowed, incomingFilter(client, msgServiceAccept))

	server := NewSession(RoleServer, &Config{})
	server.phase = PhaseDH
	require.Equal(t, filterDenied, incomingFilter(server, msgNewKeys), "NEWKEYS not sent yet")
	server.MarkNewKeysSent()
	require.Equal(t, filterAllowed, incomingFilter(server, msgNewKeys))
}
