// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import "errors"

// The error handling design (§7) recognizes four outcomes: FATAL
// (session moves to PhaseError), UNKNOWN_TYPE (reply UNIMPLEMENTED,
// continue), AGAIN (transient, not a Go error at all — Feed returns
// zero consumed bytes), and USED/NOT_USED (internal dispatcher return
// values, see HandlerResult in dispatch.go). A reentrant Feed returns
// zero without failing the session, so errReentrantProcessing and
// errFirstPacketNewkeys are never raised; errUnexpectedPayload is
// returned only by the tests.
var (
	errOversizePacket      = errors.New("ssh: packet length exceeds MaxPacketLen")
	errInvalidPacketLength = errors.New("ssh: packet length too small for length-field block size")
	errInvalidPadding      = errors.New("ssh: padding length out of range")
	errMACFailure          = errors.New("ssh: MAC verification failed")
	errDecompressionBomb   = errors.New("ssh: decompressed payload exceeds maxlen")
	errReentrantProcessing = errors.New("ssh: reentrant call into packet processing")
	errFirstPacketNewkeys  = errors.New("ssh: first packet after KEXINIT exchange must be NEWKEYS")
	errPeerDisconnected    = errors.New("ssh: peer sent DISCONNECT")
	errNoWriter            = errors.New("ssh: Send called before SetWriter")
	errUnexpectedPayload   = errors.New("ssh: dispatched payload did not match staged payload")
)
