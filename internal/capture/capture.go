/*
 * Copyright (c) 2020, Psiphon Inc.
 * All rights reserved.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package capture provides an optional sink for dumping binary SSH
// packets to a pcap file for offline analysis, mirroring the
// WITH_PCAP hook in the original SSH Library's packet.c.
package capture

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Direction identifies which way a captured packet travelled.
type Direction int

const (
	DirIn Direction = iota
	DirOut
)

// Sink receives a copy of every reassembled (DirIn) or packetized
// (DirOut) binary packet. Implementations must not retain the slice
// passed to Write past the call.
type Sink interface {
	Write(dir Direction, data []byte) error
}

// PcapSink wraps a gopacket/pcapgo.Writer, wrapping each binary SSH
// packet in a synthetic link-layer-less frame so standard pcap
// tooling can at least slice captures apart by timestamp and length.
type PcapSink struct {
	w *pcapgo.Writer
}

// NewPcapSink writes a pcap file header to w and returns a Sink that
// appends one record per captured packet.
func NewPcapSink(w io.Writer) (*PcapSink, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(65536, layers.LinkTypeRaw); err != nil {
		return nil, err
	}
	return &PcapSink{w: pw}, nil
}

func (p *PcapSink) Write(dir Direction, data []byte) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
	return p.w.WritePacket(ci, data)
}
