// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import "sync/atomic"

// Counters is the session's optional traffic-counter sink (§3 Data
// Model). Updated by the Reassembler and Packetizer, read by the
// host for accounting or rekey-threshold decisions.
type Counters struct {
	inBytes    atomic.Int64
	inPackets  atomic.Int64
	outBytes   atomic.Int64
	outPackets atomic.Int64
}

func (c *Counters) addIn(n int) {
	c.inBytes.Add(int64(n))
	c.inPackets.Add(1)
}

func (c *Counters) addOut(n int) {
	c.outBytes.Add(int64(n))
	c.outPackets.Add(1)
}

// InBytes returns the total on-wire size of the packets accepted so
// far (length field, encrypted body and MAC included).
func (c *Counters) InBytes() int64 { return c.inBytes.Load() }

// InPackets returns the total count of accepted packets.
func (c *Counters) InPackets() int64 { return c.inPackets.Load() }

// OutBytes returns the total on-wire size of the packets written so
// far (length field, encrypted body and MAC included).
func (c *Counters) OutBytes() int64 { return c.outBytes.Load() }

// OutPackets returns the total count of packets written.
func (c *Counters) OutPackets() int64 { return c.outPackets.Load() }
