package sse_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/ragchat/pkg/adapters/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Frames(t *testing.T) {
	stream := ": keep-alive\n\n" +
		"event: system\n" +
		"data: {\"event\":\"system\",\"content\":\"starting\"}\n\n" +
		"id: 7\r\n" +
		"data: line one\r\n" +
		"data: line two\r\n\r\n" +
		"retry: 1000\n\n" +
		"data:no-space\n\n" +
		"data: {\"event\":\"final_result\",\"content\":\"cut\"}\n"

	r := sse.NewReader(strings.NewReader(stream))

	f, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "system", f.Event)
	assert.JSONEq(t, `{"event":"system","content":"starting"}`, string(f.Data))

	f, err = r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "7", f.ID)
	assert.Empty(t, f.Event)
	assert.Equal(t, "line one\nline two", string(f.Data))

	f, err = r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "no-space", string(f.Data))

	// The last frame never got its blank line, so it is dropped.
	_, err = r.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_FrameTooLarge(t *testing.T) {
	big := "data: " + strings.Repeat("x", sse.MaxFrameSize) + "\n\n"
	_, err := sse.NewReader(strings.NewReader(big)).ReadFrame()
	assert.True(t, errors.Is(err, sse.ErrFrameTooLarge))
}

func TestReader_FrameTooLarge_NoNewline(t *testing.T) {
	src := &countingReader{r: io.MultiReader(
		strings.NewReader("data: "),
		io.LimitReader(repeatReader('a'), 20<<20),
	)}

	_, err := sse.NewReader(src).ReadFrame()
	assert.ErrorIs(t, err, sse.ErrFrameTooLarge)
	assert.Less(t, src.n, 2*sse.MaxFrameSize)
}

func TestReader_FrameTooLarge_AcrossLines(t *testing.T) {
	line := "data: " + strings.Repeat("y", 1024) + "\n"
	stream := strings.Repeat(line, sse.MaxFrameSize/len(line)+1) + "\n"

	_, err := sse.NewReader(strings.NewReader(stream)).ReadFrame()
	assert.ErrorIs(t, err, sse.ErrFrameTooLarge)
}

type repeatReader byte

func (b repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
