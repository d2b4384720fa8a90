// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"bytes"
	"net"
	"time"
)

// bufConn adapts a bytes.Buffer to net.Conn so tests can hand Session
// a writer without a real socket.
type bufConn struct {
	bytes.Buffer
}

func (bufConn) Close() error                       { return nil }
func (bufConn) LocalAddr() net.Addr                { return nil }
func (bufConn) RemoteAddr() net.Addr               { return nil }
func (bufConn) SetDeadline(t time.Time) error      { return nil }
func (bufConn) SetReadDeadline(t time.Time) error  { return nil }
func (bufConn) SetWriteDeadline(t time.Time) error { return nil }
