package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/runner"
	"github.com/aretw0/ragchat/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Input(t *testing.T) {
	h := runner.NewJSONHandler(strings.NewReader("\"quoted \\\"text\\\"\"\nplain text\n"), io.Discard)
	ctx := context.Background()

	line, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, `quoted "text"`, line)

	line, err = h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plain text", line)

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewJSONHandler(strings.NewReader(""), &out)
	ctx := context.Background()

	msg := domain.NewBotText("Error: boom")
	require.NoError(t, h.Message(ctx, transcript.Change{Kind: transcript.ChangeAppend, Message: msg}))
	require.NoError(t, h.Log(ctx, domain.NewLogEntry(domain.SeverityError, "Error: boom")))
	require.NoError(t, h.SystemOutput(ctx, "ready"))

	recs := decodeRecords(t, out.Bytes())
	require.Len(t, recs, 3)

	assert.Equal(t, runner.RecordMessage, recs[0].Type)
	assert.Equal(t, transcript.ChangeAppend, recs[0].Change)
	require.NotNil(t, recs[0].Message)
	assert.Equal(t, msg.ID, recs[0].Message.ID)
	assert.False(t, recs[0].Message.Markup)

	assert.Equal(t, runner.RecordLog, recs[1].Type)
	require.NotNil(t, recs[1].Entry)
	assert.Equal(t, domain.SeverityError, recs[1].Entry.Severity)

	assert.Equal(t, runner.Record{Type: runner.RecordSystem, Text: "ready"}, recs[2])
}

func TestJSONHandler_Confirm(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewJSONHandler(strings.NewReader("\"yes\"\nfalse\n"), &out)
	ctx := context.Background()

	ok, err := h.Confirm(ctx, "Remove?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Confirm(ctx, "Remove?")
	require.NoError(t, err)
	assert.False(t, ok)

	recs := decodeRecords(t, out.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, runner.Record{Type: runner.RecordConfirm, Text: "Remove?"}, recs[0])
}
