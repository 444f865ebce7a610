package sseutil

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderNext_NamedEvent(t *testing.T) {
	r := NewReader(strings.NewReader("event: message_start\ndata: {\"type\":\"message_start\"}\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "message_start", ev.Event)
	assert.Equal(t, `{"type":"message_start"}`, ev.Data)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderNext_MultilineData(t *testing.T) {
	r := NewReader(strings.NewReader("data: line1\ndata: line2\n\n"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", ev.Data)
}

func TestReaderNext_SkipsCommentsAndUnterminatedTrailer(t *testing.T) {
	r := NewReader(strings.NewReader(":heartbeat\nevent: ping\ndata: {}\n\ndata: tail"))

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "ping", ev.Event)

	ev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "tail", ev.Data)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderNext_EmptyStreamIsEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Err())
}

func TestWriterWriteNamedEvent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteNamedEvent("content_block_delta", `{"index":0}`))

	assert.Equal(t, "event: content_block_delta\ndata: {\"index\":0}\n\n", buf.String())
}

func TestWriterWriteData_NoEventLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteData(`{"id":"1"}`))

	assert.Equal(t, "data: {\"id\":\"1\"}\n\n", buf.String())
	assert.NotContains(t, buf.String(), "event:")
}

func TestWriterWriteDone(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteDone())

	assert.Equal(t, "data: [DONE]\n\n", buf.String())
}

func TestIsDoneSentinel(t *testing.T) {
	assert.True(t, IsDoneSentinel("[DONE]"))
	assert.True(t, IsDoneSentinel("  [DONE]  "))
	assert.False(t, IsDoneSentinel(`{"id":"1"}`))
}

func TestRoundTrip_WriterThenReader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteNamedEvent("message_stop", `{"type":"message_stop"}`))
	require.NoError(t, w.WriteData(`{"other":"chunk"}`))

	r := NewReader(&buf)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "message_stop", first.Event)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Empty(t, second.Event)
	assert.Equal(t, `{"other":"chunk"}`, second.Data)
}
