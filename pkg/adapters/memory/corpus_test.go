package memory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/ragchat/pkg/adapters/memory"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(name, content string) ports.File {
	return ports.File{Name: name, Content: strings.NewReader(content)}
}

func TestCorpus_UploadListClear(t *testing.T) {
	c := memory.NewCorpus()
	ctx := context.Background()

	res, err := c.Upload(ctx, []ports.File{
		file("b.pdf", "%PDF"),
		file("notes.TXT", "hello"),
		file("image.png", "png"),
		file("empty.docx", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, "2 files processed.", res.Message)
	assert.Equal(t, []string{"image.png: unsupported format", "empty.docx: empty file"}, res.Errors)

	names, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf", "notes.TXT"}, names)

	doc, ok := c.Get("notes.TXT")
	require.True(t, ok)
	assert.Equal(t, "hello", string(doc.Data))

	msg, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2 files removed.", msg)

	names, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCorpus_UploadStripsDirectories(t *testing.T) {
	c := memory.NewCorpus()
	_, err := c.Upload(context.Background(), []ports.File{file("../../etc/report.txt", "x")})
	require.NoError(t, err)

	_, ok := c.Get("report.txt")
	assert.True(t, ok)
}

func TestSupported(t *testing.T) {
	assert.True(t, memory.Supported("a.pdf"))
	assert.True(t, memory.Supported("a.DOCX"))
	assert.True(t, memory.Supported("dir/a.txt"))
	assert.False(t, memory.Supported("a.md"))
	assert.False(t, memory.Supported("pdf"))
}
