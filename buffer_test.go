// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketBufferAppendConsume(t *testing.T) {
	b := newPacketBuffer()
	b.Append([]byte("hello"))
	require.Equal(t, 5, b.Len())
	require.Equal(t, []byte("hello"), b.Bytes())

	b.Consume(2)
	require.Equal(t, 3, b.Len())
	require.Equal(t, []byte("llo"), b.Bytes())

	b.Append([]byte(" world"))
	require.Equal(t, []byte("llo world"), b.Bytes())
}

func TestPacketBufferConsumeAllResets(t *testing.T) {
	b := newPacketBuffer()
	b.Append([]byte("abc"))
	b.Consume(3)
	require.Equal(t, 0, b.Len())
	b.Append([]byte("xyz"))
	require.Equal(t, []byte("xyz"), b.Bytes())
}

func TestPacketBufferPrepend(t *testing.T) {
	b := newPacketBuffer()
	b.Append([]byte("world"))
	b.Consume(0) // no-op, exercises the pos==0 compact fast path
	b.Prepend([]byte("hello "))
	require.Equal(t, []byte("hello world"), b.Bytes())
}

func TestPacketBufferReinit(t *testing.T) {
	b := newPacketBuffer()
	b.Append([]byte("abc"))
	b.Reinit()
	require.Equal(t, 0, b.Len())
}
