// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// compressor streams outbound payload through deflate with partial
// flush semantics, so each packet's compressed bytes are self
// contained without a final-block marker that would prevent the peer
// from decompressing before the stream ends. Grounded on gzip.c's
// compress_buffer / BLOCKSIZE staging loop; klauspost/compress/flate
// is an API-compatible drop-in for compress/flate used elsewhere in
// the example pack's dependency tree.
type compressor struct {
	w   *flate.Writer
	buf bytes.Buffer
}

func newCompressor(level int) (*compressor, error) {
	c := &compressor{}
	w, err := flate.NewWriter(&c.buf, level)
	if err != nil {
		return nil, err
	}
	c.w = w
	return c, nil
}

// Compress deflates payload and returns the compressed bytes for this
// packet only. Flush is called instead of Close so the stream's
// dictionary state carries forward to the next packet (§4.2
// "streaming state carries between packets").
func (c *compressor) Compress(payload []byte) ([]byte, error) {
	c.buf.Reset()
	if _, err := c.w.Write(payload); err != nil {
		return nil, err
	}
	if err := c.w.Flush(); err != nil {
		return nil, err
	}
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	return out, nil
}

// chunkReader hands flate.Reader exactly one packet's compressed
// bytes at a time, returning io.EOF once they're exhausted rather
// than blocking for more. A sync-flush boundary (as produced by
// compressor.Compress's Flush) is always a valid decode point, so
// the resulting EOF lands at a clean boundary instead of mid-stream.
type chunkReader struct {
	buf []byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// decompressor inflates inbound payload with a caller-supplied
// maxlen guard against decompression bombs (§4.2). Grounded on
// gzip.c's decompress_buffer, including its Z_BUF_ERROR-is-not-an-
// error treatment of "input exhausted".
type decompressor struct {
	maxlen int
	src    *chunkReader
	fr     io.Reader
}

func newDecompressor(maxlen int) *decompressor {
	src := &chunkReader{}
	return &decompressor{
		maxlen: maxlen,
		src:    src,
		fr:     flate.NewReader(src),
	}
}

// Decompress inflates ciphertext that has just been decrypted and
// returns the plaintext payload, or a FATAL error if the inflated
// output would exceed maxlen.
func (d *decompressor) Decompress(compressed []byte) ([]byte, error) {
	d.src.buf = compressed

	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := d.fr.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			if d.maxlen > 0 && len(out) > d.maxlen {
				return nil, errDecompressionBomb
			}
		}
		if err == io.EOF {
			// "input exhausted" is terminal-normal (§4.2), not a
			// failure: the sync-flush boundary leaves the stream
			// decodable up to exactly what this packet supplied.
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}
