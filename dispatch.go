// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import "encoding/binary"

// HandlerResult is a handler's verdict: USED means it consumed the
// packet and the Dispatcher should stop scanning further bundles;
// NotUsed means it declined and the next bundle (or, failing all of
// them, the Unimplemented Responder) gets a turn (§4.5, §7).
type HandlerResult int

const (
	NotUsed HandlerResult = iota
	Used
)

// Handler processes one validated, filter-ALLOWED packet. payload is
// the message body after the type byte, which is passed as typ. It is
// only valid for the duration of the call (§6 "valid only during
// handler execution"); a handler that needs to retain bytes beyond
// the call must copy them.
type Handler func(s *Session, typ byte, payload []byte, seq uint32) HandlerResult

// HandlerBundle is a contiguous run of message types and their
// handlers, registered as a unit. Any entry in Handlers may be nil.
// Grounded on the original implementation's default_packet_handlers
// table: a start index plus a dense array, rather than a sparse
// type->handler map, so a protocol sub-layer can claim a whole block
// of adjacent types (e.g. channel messages 90-100) in one call.
type HandlerBundle struct {
	Start    byte
	Handlers []Handler
}

// Dispatcher is the priority-ordered list of handler bundles (§4.5).
// Bundles are scanned in registration order; a later registration
// only gets a chance at a given type if every earlier bundle either
// does not cover that type or returns NotUsed.
type Dispatcher struct {
	bundles []HandlerBundle
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register appends bundle to the end of the scan order.
func (d *Dispatcher) Register(bundle HandlerBundle) {
	d.bundles = append(d.bundles, bundle)
}

// dispatch runs the algorithm of §4.5: scan bundles in registration
// order, skipping any that do not cover typ or whose entry for typ is
// nil, invoking each covering handler and stopping as soon as one
// returns Used. If none does, it sends the UNIMPLEMENTED reply for seq
// itself and returns false.
func (d *Dispatcher) dispatch(s *Session, typ byte, payload []byte, seq uint32) bool {
	for _, b := range d.bundles {
		if typ < b.Start || int(typ) >= int(b.Start)+len(b.Handlers) {
			continue
		}
		h := b.Handlers[typ-b.Start]
		if h == nil {
			continue
		}
		if h(s, typ, payload, seq) == Used {
			return true
		}
	}
	s.sendUnimplemented(seq)
	return false
}

// sendUnimplemented is the Unimplemented Responder (§4.7): a single
// packet reply of type byte UNIMPLEMENTED followed by the 32-bit
// sequence number of the offending inbound packet.
func (s *Session) sendUnimplemented(seq uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outBuf.Reinit()
	s.outBuf.Append([]byte{msgUnimplemented})
	var seqBuf [4]byte
	binary.BigEndian.PutUint32(seqBuf[:], seq)
	s.outBuf.Append(seqBuf[:])
	_ = s.sendStaged()
}

// registerDefaultHandlers installs the session-owned default bundle
// covering types 1-100 (§4.5). DISCONNECT (fails the session), IGNORE
// and DEBUG (no-ops) are claimed with Used; NEWKEYS (promotes the
// pending cipher suite) and REQUEST_SUCCESS/REQUEST_FAILURE (resolve
// the pending global request) do their bookkeeping and return
// NotUsed; every other entry is nil. Because this bundle is registered
// first, a bundle registered later by a protocol sub-layer sees a type
// only where the default entry is nil or returns NotUsed.
func (s *Session) registerDefaultHandlers() {
	handlers := make([]Handler, 100)
	handlers[msgDisconnect-1] = handleDisconnect
	handlers[msgIgnore-1] = handleNoop
	handlers[msgDebug-1] = handleNoop
	handlers[msgRequestSuccess-1] = handleRequestSuccess
	handlers[msgRequestFailure-1] = handleRequestFailure
	handlers[msgNewKeys-1] = handleNewKeys
	s.Register(HandlerBundle{Start: 1, Handlers: handlers})
}

// handleNewKeys promotes the pending cipher suite on receipt of the
// peer's NEWKEYS, the inbound half of activateNext's "accepted or
// sent" contract, then falls through so the external kex layer still
// observes the packet and can call finishKex.
func handleNewKeys(s *Session, typ byte, payload []byte, seq uint32) HandlerResult {
	s.activateNext()
	return NotUsed
}

func handleDisconnect(s *Session, typ byte, payload []byte, seq uint32) HandlerResult {
	s.mu.Lock()
	s.failLocked(errPeerDisconnected)
	s.mu.Unlock()
	return Used
}

func handleNoop(s *Session, typ byte, payload []byte, seq uint32) HandlerResult {
	return Used
}

// handleRequestSuccess and handleRequestFailure resolve the pending
// global-request sub-phase before falling through (NotUsed) so a
// registered channel/global-request layer still sees the reply.
func handleRequestSuccess(s *Session, typ byte, payload []byte, seq uint32) HandlerResult {
	s.globalRequestResolved(true)
	return NotUsed
}

func handleRequestFailure(s *Session, typ byte, payload []byte, seq uint32) HandlerResult {
	s.globalRequestResolved(false)
	return NotUsed
}

