package docstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/ragchat/pkg/adapters/docstore"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, docstore.UploadPath, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		got = map[string]string{}
		for _, fh := range r.MultipartForm.File[docstore.FormField] {
			f, err := fh.Open()
			require.NoError(t, err)
			data, _ := io.ReadAll(f)
			f.Close()
			got[fh.Filename] = string(data)
		}
		_ = json.NewEncoder(w).Encode(ports.UploadResult{Message: "2 files processed."})
	}))
	defer srv.Close()

	res, err := docstore.New(srv.URL).Upload(context.Background(), []ports.File{
		{Name: "a.pdf", Content: strings.NewReader("pdf")},
		{Name: "dir/b.txt", Content: strings.NewReader("txt")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2 files processed.", res.Message)
	assert.Equal(t, map[string]string{"a.pdf": "pdf", "b.txt": "txt"}, got)
}

func TestClient_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":["a.pdf: empty file"]}`))
	}))
	defer srv.Close()

	_, err := docstore.New(srv.URL).Upload(context.Background(), []ports.File{
		{Name: "a.pdf", Content: strings.NewReader("")},
	})
	var se *docstore.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, []string{"a.pdf: empty file"}, se.Errors)
	assert.Contains(t, err.Error(), "a.pdf: empty file")
}

func TestClient_UploadPaths(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for _, fh := range r.MultipartForm.File[docstore.FormField] {
			sent = append(sent, fh.Filename)
		}
		_ = json.NewEncoder(w).Encode(ports.UploadResult{Message: "1 files processed."})
	}))
	defer srv.Close()

	res, err := docstore.New(srv.URL).UploadPaths(context.Background(),
		write("notes.txt", "hello"),
		write("photo.png", "png"),
		filepath.Join(dir, "missing.pdf"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, sent)
	assert.Equal(t, "1 files processed.", res.Message)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "photo.png: unsupported format", res.Errors[0])
	assert.True(t, strings.HasPrefix(res.Errors[1], "missing.pdf: "))
}

func TestClient_UploadPaths_NothingToSend(t *testing.T) {
	c := docstore.New("http://127.0.0.1:1")
	res, err := c.UploadPaths(context.Background(), "slides.pptx")
	require.NoError(t, err)
	assert.Equal(t, "0 files processed.", res.Message)
	assert.Equal(t, []string{"slides.pptx: unsupported format"}, res.Errors)
}

func TestClient_ListAndClear(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(docstore.ListPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`["a.pdf","b.txt"]`))
	})
	mux.HandleFunc(docstore.ClearPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = w.Write([]byte(`{"message":"All files deleted."}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := docstore.New(srv.URL)
	names, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.txt"}, names)

	msg, err := c.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "All files deleted.", msg)
}

func TestClient_DetailError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"store offline"}`))
	}))
	defer srv.Close()

	_, err := docstore.New(srv.URL).List(context.Background())
	var se *docstore.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "store offline", se.Detail)
}
