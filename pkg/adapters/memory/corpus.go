package memory

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/ragchat/pkg/ports"
)

// SupportedExtensions lists the document formats the corpus accepts.
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

// Document is one stored file.
type Document struct {
	Name string
	Data []byte
}

// Corpus implements ports.DocumentStore in memory. It backs the mock
// backend and tests. Safe for concurrent use.
type Corpus struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		docs: make(map[string]Document),
	}
}

// Supported reports whether name has an accepted extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Upload stores every supported, non-empty file. Rejected files are reported
// per file in the result's Errors; they never fail the whole batch.
func (c *Corpus) Upload(ctx context.Context, files []ports.File) (ports.UploadResult, error) {
	var (
		accepted []Document
		errs     []string
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return ports.UploadResult{}, err
		}
		name := filepath.Base(f.Name)
		if !Supported(name) {
			errs = append(errs, fmt.Sprintf("%s: unsupported format", name))
			continue
		}
		data, err := io.ReadAll(f.Content)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if len(data) == 0 {
			errs = append(errs, fmt.Sprintf("%s: empty file", name))
			continue
		}
		accepted = append(accepted, Document{Name: name, Data: data})
	}

	c.mu.Lock()
	for _, d := range accepted {
		c.docs[d.Name] = d
	}
	c.mu.Unlock()

	return ports.UploadResult{
		Message: fmt.Sprintf("%d files processed.", len(accepted)),
		Errors:  errs,
	}, nil
}

// List returns the stored file names in lexical order.
func (c *Corpus) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.docs))
	for k := range c.docs {
		names = append(names, k)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

// Clear removes every document.
func (c *Corpus) Clear(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.docs)
	c.docs = make(map[string]Document)
	return fmt.Sprintf("%d files removed.", n), nil
}

// Get returns a stored document.
func (c *Corpus) Get(name string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.docs[name]
	return d, ok
}
