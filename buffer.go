// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

// packetBuffer is a growable byte buffer with a cheap, non-copying
// "consume from the front" operation, mirroring libssh's ssh_buffer
// (ssh_buffer_add_data / ssh_buffer_get / ssh_buffer_reinit). Unlike
// bytes.Buffer it never shrinks its backing array on Reinit, so the
// Reassembler and Packetizer can reuse the same allocation across
// every packet on a session.
type packetBuffer struct {
	data []byte
	pos  int // consumed prefix; data[pos:] is the live content
}

func newPacketBuffer() *packetBuffer {
	return &packetBuffer{data: make([]byte, 0, 4096)}
}

// Len returns the number of unconsumed bytes.
func (b *packetBuffer) Len() int {
	return len(b.data) - b.pos
}

// Bytes returns the unconsumed content. The slice is invalidated by
// the next call to Append, Consume, or Reinit.
func (b *packetBuffer) Bytes() []byte {
	return b.data[b.pos:]
}

// Append adds p to the end of the buffer. Compacts first if the
// consumed prefix has grown to dominate the backing array, so a long
// lived session's buffer does not grow without bound across many
// small partial reads.
func (b *packetBuffer) Append(p []byte) {
	if b.pos > 0 && b.pos*2 > len(b.data) {
		b.compact()
	}
	b.data = append(b.data, p...)
}

// Prepend inserts p before the current unconsumed content, compacting
// the consumed prefix away first.
func (b *packetBuffer) Prepend(p []byte) {
	b.compact()
	b.data = append(b.data, make([]byte, len(p))...)
	copy(b.data[len(p):], b.data[:len(b.data)-len(p)])
	copy(b.data, p)
}

// Consume advances past the first n unconsumed bytes without copying.
// n must not exceed Len().
func (b *packetBuffer) Consume(n int) {
	b.pos += n
	if b.pos == len(b.data) {
		b.data = b.data[:0]
		b.pos = 0
	}
}

// Reinit discards all content, retaining the backing array.
func (b *packetBuffer) Reinit() {
	b.data = b.data[:0]
	b.pos = 0
}

// compact moves the unconsumed content to the front of the backing
// array, discarding the consumed prefix.
func (b *packetBuffer) compact() {
	if b.pos == 0 {
		return
	}
	n := copy(b.data, b.data[b.pos:])
	b.data = b.data[:n]
	b.pos = 0
}
