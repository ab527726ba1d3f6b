package transcript_test

import (
	"sync"
	"testing"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_PlaceholderLifecycle(t *testing.T) {
	tr := transcript.New()
	var changes []transcript.Change
	tr.Subscribe(func(c transcript.Change) { changes = append(changes, c) })

	tr.Append(domain.NewUserMessage("hi"))
	h := tr.AppendPlaceholder("thinking")
	require.True(t, h.Valid())
	assert.Equal(t, 2, tr.Len())

	require.NoError(t, tr.Update(h, "retriever running"))
	msgs := tr.Messages()
	assert.Equal(t, "retriever running", msgs[1].Content)
	assert.True(t, msgs[1].Placeholder)

	require.NoError(t, tr.Remove(h))
	assert.Equal(t, 1, tr.Len())
	assert.ErrorIs(t, tr.Remove(h), transcript.ErrUnknownHandle)
	assert.ErrorIs(t, tr.Update(h, "late"), transcript.ErrUnknownHandle)

	kinds := make([]transcript.ChangeKind, len(changes))
	for i, c := range changes {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []transcript.ChangeKind{
		transcript.ChangeAppend, transcript.ChangeAppend, transcript.ChangeUpdate, transcript.ChangeRemove,
	}, kinds)
	assert.True(t, changes[0].Scroll)
	assert.False(t, changes[2].Scroll)
}

func TestTranscript_UpdateRejectsFinalMessages(t *testing.T) {
	tr := transcript.New()
	h := tr.Append(domain.NewBotText("final"))
	assert.ErrorIs(t, tr.Update(h, "changed"), transcript.ErrNotPlaceholder)

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, "final", last.Content)
}

func TestTranscript_RemoveKeepsOrder(t *testing.T) {
	tr := transcript.New()
	tr.Append(domain.NewUserMessage("a"))
	h := tr.AppendPlaceholder("p")
	tr.Append(domain.NewUserMessage("b"))

	require.NoError(t, tr.Remove(h))
	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Content)
	assert.Equal(t, "b", msgs[1].Content)
}

func TestTranscript_ZeroHandle(t *testing.T) {
	tr := transcript.New()
	var h transcript.Handle
	assert.False(t, h.Valid())
	assert.ErrorIs(t, tr.Remove(h), transcript.ErrUnknownHandle)
	_, ok := tr.Last()
	assert.False(t, ok)
}

func TestTranscript_ConcurrentAppend(t *testing.T) {
	tr := transcript.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Append(domain.NewUserMessage("x"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, tr.Len())
}

func TestActivityLog(t *testing.T) {
	log := transcript.NewActivityLog()
	var seen []domain.LogEntry
	log.Subscribe(func(e domain.LogEntry) { seen = append(seen, e) })

	log.Add(domain.SeveritySystem, "starting")
	log.Add(domain.SeverityNode, "retriever completed")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.SeverityNode, entries[1].Severity)
	assert.Equal(t, "retriever completed", entries[1].Text)
	assert.Equal(t, entries, seen)
	assert.Equal(t, 2, log.Len())
}
