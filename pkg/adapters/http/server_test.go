package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	backend "github.com/aretw0/ragchat/pkg/adapters/http"
	"github.com/aretw0/ragchat/pkg/adapters/memory"
	"github.com/aretw0/ragchat/pkg/adapters/sse"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(agent backend.Agent) (http.Handler, *memory.Corpus) {
	corpus := memory.NewCorpus()
	if agent == nil {
		agent = &backend.ScriptedAgent{Nodes: []string{"retriever"}, Corpus: corpus}
	}
	return backend.NewHandler(agent, corpus), corpus
}

func readFrames(t *testing.T, body string) []domain.StreamEvent {
	t.Helper()
	r := sse.NewReader(strings.NewReader(body))
	var out []domain.StreamEvent
	for {
		f, err := r.ReadFrame()
		if err != nil {
			return out
		}
		ev, err := domain.DecodeEvent(f.Data)
		require.NoError(t, err)
		assert.Equal(t, string(ev.Type()), f.Event)
		out = append(out, ev)
	}
}

func TestHealth(t *testing.T) {
	h, _ := newHandler(nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStream_ScriptedAgent(t *testing.T) {
	h, _ := newHandler(nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/agent/stream?query="+url.QueryEscape("What is X?"), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := readFrames(t, w.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, domain.System{Text: "starting"}, events[0])
	assert.Equal(t, domain.NodeUpdate{Node: "retriever"}, events[1])
	final, ok := events[2].(domain.FinalResult)
	require.True(t, ok)
	assert.Contains(t, final.Text, "What is X?")
}

func TestStream_AgentErrorBecomesErrorEvent(t *testing.T) {
	agent := backend.AgentFunc(func(ctx context.Context, query string, emit backend.EmitFunc) error {
		if err := emit(domain.System{Text: "starting"}); err != nil {
			return err
		}
		return assert.AnError
	})
	h, _ := newHandler(agent)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/agent/stream?query=q", nil))

	events := readFrames(t, w.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, domain.Error{Text: assert.AnError.Error()}, events[1])
}

func TestStream_NothingAfterTerminal(t *testing.T) {
	agent := backend.AgentFunc(func(ctx context.Context, query string, emit backend.EmitFunc) error {
		_ = emit(domain.FinalResult{Text: "one"})
		_ = emit(domain.FinalResult{Text: "two"})
		return nil
	})
	h, _ := newHandler(agent)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/agent/stream?query=q", nil))

	assert.Equal(t, []domain.StreamEvent{domain.FinalResult{Text: "one"}}, readFrames(t, w.Body.String()))
}

func TestStream_EmptyQuery(t *testing.T) {
	h, _ := newHandler(nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/agent/stream?query=%20", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name       string
		agent      backend.Agent
		body       string
		wantStatus int
		wantKey    string
	}{
		{"Answer", nil, `{"query":"What is X?"}`, http.StatusOK, "answer"},
		{"Agent Error", &backend.ScriptedAgent{Fail: "index missing"}, `{"query":"q"}`, http.StatusInternalServerError, "detail"},
		{"Empty Query", nil, `{"query":"  "}`, http.StatusBadRequest, "detail"},
		{"Bad Body", nil, `{`, http.StatusBadRequest, "detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHandler(tt.agent)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("POST", "/api/agent", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp, tt.wantKey)
		})
	}
}

func TestAsk_ErrorDetail(t *testing.T) {
	h, _ := newHandler(&backend.ScriptedAgent{Fail: "index missing"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/agent", strings.NewReader(`{"query":"q"}`)))
	assert.JSONEq(t, `{"detail":"index missing"}`, w.Body.String())
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentRoutes(t *testing.T) {
	h, corpus := newHandler(nil)

	body, ct := multipartBody(t, map[string]string{"a.pdf": "pdf", "b.png": "png"})
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"1 files processed.","errors":["b.png: unsupported format"]}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/files/list", nil))
	assert.JSONEq(t, `["a.pdf"]`, w.Body.String())

	// The scripted agent cites indexed documents.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/agent", strings.NewReader(`{"query":"q"}`)))
	assert.Contains(t, w.Body.String(), "a.pdf")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("DELETE", "/files/clear", nil))
	assert.JSONEq(t, `{"message":"1 files removed."}`, w.Body.String())

	names, err := corpus.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/files/list", nil))
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUpload_NoFiles(t *testing.T) {
	h, _ := newHandler(nil)
	body, ct := multipartBody(t, nil)
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newHandler(nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/upload", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
