// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"net"
	"sync"

	"github.com/blinksh/libssh/internal/capture"
	"github.com/blinksh/libssh/internal/errtrace"
)

// SessionPhase is the top level state of a Session. It advances
// monotonically through the sequence below, with one permitted
// backward revisit of (Authenticated -> DH -> Authenticated) to
// support re-keying.
type SessionPhase int

const (
	PhaseInitialKex SessionPhase = iota
	PhaseDH
	PhaseAuthenticating
	PhaseAuthenticated
	PhaseError
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseInitialKex:
		return "INITIAL_KEX"
	case PhaseDH:
		return "DH"
	case PhaseAuthenticating:
		return "AUTHENTICATING"
	case PhaseAuthenticated:
		return "AUTHENTICATED"
	case PhaseError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// KexPhase is the sub-state of key exchange within PhaseDH (and,
// transiently, PhaseInitialKex/PhaseAuthenticated for re-key).
type KexPhase int

const (
	KexInit KexPhase = iota
	KexInitSent
	KexNewkeysSent
	KexFinished
)

// AuthPhase is the sub-state of user authentication within
// PhaseAuthenticating.
type AuthPhase int

const (
	AuthNoneSent AuthPhase = iota
	AuthPubkeyOfferSent
	AuthPubkeyAuthSent
	AuthPasswordAuthSent
	AuthKbdintSent
	AuthInfo
	AuthGSSAPIRequestSent
	AuthGSSAPIToken
	AuthGSSAPIMICSent
	AuthSuccess
	AuthPartial
	AuthFailed
	AuthError
)

// GlobalRequestPhase tracks the state of a global request the local
// side has sent and is awaiting a reply for.
type GlobalRequestPhase int

const (
	GlobalRequestNone GlobalRequestPhase = iota
	GlobalRequestPending
	GlobalRequestAccepted
	GlobalRequestDenied
)

// AuthServicePhase tracks the ssh-userauth service request/accept
// handshake that precedes authentication.
type AuthServicePhase int

const (
	AuthServiceNone AuthServicePhase = iota
	AuthServiceSent
	AuthServiceAccepted
)

// Role distinguishes client and server sessions; several filter and
// dispatch rules are role-specific (§4.4 role-rejection).
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// reassemblyState is the Packet Reassembler's three-state automaton
// (§4.3).
type reassemblyState int

const (
	stateInit reassemblyState = iota
	stateSizeRead
	stateProcessing
)

// MaxPacketLen is the fixed DoS guard on declared packet length
// (§4.1). libssh's own default is the same value.
const MaxPacketLen = 256 * 1024

// Session is the top level, long lived entity shared by every CORE
// component. A Session is owned by exactly one execution context at
// a time (§5); it is not safe to call Feed or Send concurrently from
// multiple goroutines, though the read-only accessors may be called
// from another goroutine while a handler is not running.
type Session struct {
	Role Role

	config *Config

	mu sync.Mutex

	phase       SessionPhase
	kexPhase    KexPhase
	authPhase   AuthPhase
	globalPhase GlobalRequestPhase
	authSvc     AuthServicePhase

	current *CipherSuite // nil before the first NEWKEYS
	next    *CipherSuite // populated while a re-key is in flight

	sendSeq uint32
	recvSeq uint32

	inBuf   *packetBuffer
	inPkt   incomingPacket
	state   reassemblyState
	inflate *decompressor

	outBuf  *packetBuffer
	deflate *compressor

	dispatcher *Dispatcher

	counters Counters
	capture  capture.Sink

	channels map[uint32]struct{}

	writer net.Conn // set by the host; Send() writes the staged packet here

	lastErr error

	seenFirstKex bool
}

// incomingPacket is the currently-reassembling (or, once dispatched,
// most recently dispatched) packet's metadata (§3 Incoming Packet).
type incomingPacket struct {
	typ    byte
	length uint32
	valid  bool
	head   []byte // decrypted length-field block, cached by tryReadLength
}

// NewSession creates a Session in PhaseInitialKex/KexInit, the
// mandatory starting state of every SSH connection.
func NewSession(role Role, config *Config) *Session {
	if config == nil {
		config = &Config{}
	}
	config.setDefaults()

	s := &Session{
		Role:       role,
		config:     config,
		phase:      PhaseInitialKex,
		kexPhase:   KexInit,
		inBuf:      newPacketBuffer(),
		outBuf:     newPacketBuffer(),
		dispatcher: NewDispatcher(),
		channels:   make(map[uint32]struct{}),
		capture:    config.Capture,
	}
	s.registerDefaultHandlers()
	return s
}

// SetWriter sets the net.Conn (or any io.Writer wrapped as one by
// the host) that Send writes staged, framed packets to.
func (s *Session) SetWriter(w net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Phase returns the current session phase. Safe to call concurrently
// with Feed/Send.
func (s *Session) Phase() SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// KexPhase returns the current key exchange sub-phase.
func (s *Session) KexPhase() KexPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kexPhase
}

// AuthPhase returns the current authentication sub-phase.
func (s *Session) AuthPhase() AuthPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authPhase
}

// Err returns the error that moved the session into PhaseError, or
// nil if the session has not failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Counters returns the session's traffic counter sink.
func (s *Session) Counters() *Counters {
	return &s.counters
}

// CurrentCipherSuite returns the negotiated cipher suite in effect
// for new packets, or nil before the first NEWKEYS.
func (s *Session) CurrentCipherSuite() *CipherSuite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SendSeq and RecvSeq expose the raw sequence counters for testing
// and observability; the CORE itself only ever increments them.
func (s *Session) SendSeq() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendSeq
}

func (s *Session) RecvSeq() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recvSeq
}

// fail transitions the session to PhaseError and records err as the
// human-readable, host-retrievable failure reason (§7). Once failed,
// every subsequent Feed call is a no-op (§5 Cancellation).
func (s *Session) fail(err error) error {
	s.mu.Lock()
	wrapped := s.failLocked(err)
	s.mu.Unlock()
	return wrapped
}

// failLocked is fail's body for callers that already hold s.mu, such
// as the reassembler loop. It wraps err through internal/errtrace
// before storing it, so every FATAL path — not just fail's own
// callers — gets the same stack-frame provenance on Session.Err().
func (s *Session) failLocked(err error) error {
	wrapped := errtrace.Wrap(err)
	s.phase = PhaseError
	if s.lastErr == nil {
		s.lastErr = wrapped
	}
	if s.config.Logger != nil {
		s.config.Logger.WithTraceFields(LogFields{"error": wrapped.Error()}).Error("session failed")
	}
	return wrapped
}

// enterDH transitions the session into the DH phase from either
// InitialKex or Authenticated (re-key), per the KEXINIT filter rule.
func (s *Session) enterDH() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseDH
	s.kexPhase = KexInit
}

// finishKex transitions the session out of the DH phase once NEWKEYS
// has been both sent and received, advancing to Authenticating on
// the first key exchange or back to Authenticated on a re-key.
func (s *Session) finishKex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kexPhase = KexFinished
	if s.seenFirstKex {
		s.phase = PhaseAuthenticated
	} else {
		s.phase = PhaseAuthenticating
		s.seenFirstKex = true
	}
}

// MarkKexInitSent records that this side has sent its own KEXINIT and
// is now waiting to drive (or receive) the DH exchange, the
// filter-visible half of libssh's SSH_KEX_STATE_DH transition. The
// external kex layer calls this immediately after writing its KEXINIT
// packet.
func (s *Session) MarkKexInitSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kexPhase = KexInitSent
}

// MarkNewKeysSent records that this side has sent its own NEWKEYS and
// is now waiting for the peer's, so an incoming NEWKEYS is filter
// ALLOWED. Called by the external kex layer after writing NEWKEYS,
// before finishKex. Also promotes the pending cipher suite, the
// outbound half of activateNext's "accepted or sent" contract.
func (s *Session) MarkNewKeysSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kexPhase = KexNewkeysSent
	s.activateNextLocked()
}

// MarkAuthServiceRequested records that the client has sent
// SERVICE_REQUEST for ssh-userauth, so a subsequent SERVICE_ACCEPT
// from the server is filter ALLOWED.
func (s *Session) MarkAuthServiceRequested() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authSvc = AuthServiceSent
}

// MarkAuthServiceAccepted records that the server's SERVICE_ACCEPT
// has been processed and the ssh-userauth service is now active.
func (s *Session) MarkAuthServiceAccepted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authSvc = AuthServiceAccepted
}

// MarkGlobalRequestSent records that a GLOBAL_REQUEST awaiting a
// reply has just been sent, so a subsequent REQUEST_SUCCESS or
// REQUEST_FAILURE is filter ALLOWED. Called by the external global
// request originator (e.g. tcpip-forward); the CORE tracks at most
// one request in flight, matching RFC 4254's request/reply ordering.
func (s *Session) MarkGlobalRequestSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalPhase = GlobalRequestPending
}

// globalRequestResolved records the reply to a pending global
// request. Called internally once the reply has been filtered and
// dispatched.
func (s *Session) globalRequestResolved(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if accepted {
		s.globalPhase = GlobalRequestAccepted
	} else {
		s.globalPhase = GlobalRequestDenied
	}
}

// OpenChannel and CloseChannel maintain the channel-membership set
// that is part of Session State (§3 Data Model); channel semantics
// beyond membership (window accounting, data routing) belong to the
// external channel-multiplexing layer, which calls these as it opens
// and closes channels.
func (s *Session) OpenChannel(id uint32)  { s.trackChannel(id, true) }
func (s *Session) CloseChannel(id uint32) { s.trackChannel(id, false) }

// HasChannel reports whether id is currently a member of the
// session's open-channel set.
func (s *Session) HasChannel(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.channels[id]
	return ok
}

// ResetSequenceNumbers zeroes both sequence counters. Exposed for an
// external kex layer that has negotiated OpenSSH's strict KEX mode
// (kex-strict-c/s-v00@openssh.com): the CORE provides the primitive,
// the kex layer decides when strict mode applies (SPEC_FULL.md
// "Supplemented: strict-KEX sequence reset").
func (s *Session) ResetSequenceNumbers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendSeq = 0
	s.recvSeq = 0
}

// PrepareKeyChange stages next as the cipher suite that will become
// current once NEWKEYS is sent (outbound) or received (inbound) on
// the corresponding direction. The CORE never derives next itself;
// it is handed over fully keyed by the external kex layer.
func (s *Session) PrepareKeyChange(next *CipherSuite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = next
}

// activateNext promotes the pending cipher suite to current. Called
// internally when a NEWKEYS packet is accepted (dispatch.go's
// handleNewKeys) or sent (MarkNewKeysSent).
func (s *Session) activateNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activateNextLocked()
}

// activateNextLocked is activateNext's body for callers that already
// hold s.mu.
func (s *Session) activateNextLocked() {
	if s.next != nil {
		s.current = s.next
		s.next = nil
	}
}

// Register adds a handler bundle to the session's dispatcher (§4.5,
// §6 Dispatcher registration).
func (s *Session) Register(bundle HandlerBundle) {
	s.dispatcher.Register(bundle)
}

// trackChannel adds or removes id from the channel-membership set.
func (s *Session) trackChannel(id uint32, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		s.channels[id] = struct{}{}
	} else {
		delete(s.channels, id)
	}
}
