package testutils

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	backend "github.com/aretw0/ragchat/pkg/adapters/http"
	"github.com/aretw0/ragchat/pkg/adapters/memory"
	"github.com/stretchr/testify/require"
)

// StartBackend serves the mock agent backend with an empty corpus. A
// ScriptedAgent without a corpus answers from this one.
// The server is closed when the test ends.
func StartBackend(t *testing.T, agent backend.Agent) (*httptest.Server, *memory.Corpus) {
	t.Helper()

	corpus := memory.NewCorpus()
	if agent == nil {
		agent = &backend.ScriptedAgent{}
	}
	if scripted, ok := agent.(*backend.ScriptedAgent); ok && scripted.Corpus == nil {
		scripted.Corpus = corpus
	}
	srv := httptest.NewServer(backend.NewHandler(agent, corpus))
	t.Cleanup(srv.Close)

	return srv, corpus
}

// WriteFiles creates the named files in a temporary directory and returns
// their paths in argument order.
// It fails the test immediately on error.
func WriteFiles(t *testing.T, files ...string) []string {
	t.Helper()
	require.Zero(t, len(files)%2, "WriteFiles takes name/content pairs")

	dir := t.TempDir()
	paths := make([]string, 0, len(files)/2)
	for i := 0; i < len(files); i += 2 {
		path := filepath.Join(dir, files[i])
		require.NoError(t, os.WriteFile(path, []byte(files[i+1]), 0o600), "Failed to write %s", files[i])
		paths = append(paths, path)
	}
	return paths
}
