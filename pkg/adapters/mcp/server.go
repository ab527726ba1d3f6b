// Package mcp exposes the assistant client as a Model Context Protocol server,
// so other agents can ask questions and manage the document corpus.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DocumentsURI is the resource listing the indexed documents.
const DocumentsURI = "ragchat://documents"

// Asker runs one query to its terminal outcome.
type Asker interface {
	Ask(ctx context.Context, query string) (domain.Message, domain.Outcome, error)
}

// AskArgs are the arguments of the ask tool.
type AskArgs struct {
	Query string `json:"query"`
}

// AskResponse is the structured result of the ask tool.
type AskResponse struct {
	Answer   string         `json:"answer" jsonschema_description:"Final transcript message: sanitized HTML when markup is true, plain text otherwise"`
	Markup   bool           `json:"markup" jsonschema_description:"Whether answer is sanitized HTML"`
	Markdown string         `json:"markdown,omitempty" jsonschema_description:"Markdown source of a markup answer"`
	Outcome  domain.Outcome `json:"outcome" jsonschema_description:"How the exchange ended"`
}

// ClearArgs are the arguments of the clear_documents tool.
type ClearArgs struct {
	Confirm bool `json:"confirm"`
}

// Server exposes an Asker and a DocumentStore as an MCP Server.
type Server struct {
	asker     Asker
	docs      ports.DocumentStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(asker Asker, docs ports.DocumentStore, version string, opts ...Option) *Server {
	s := &Server{
		asker:     asker,
		docs:      docs,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("ragchat-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: ask
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Ask the document-aware assistant a question and wait for its final answer."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question to ask")),
		mcp.WithOutputSchema[AskResponse](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	// TOOL: list_documents
	s.mcpServer.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the documents indexed by the assistant."),
	), s.handleList)

	// TOOL: clear_documents
	clearTool := mcp.NewTool("clear_documents",
		mcp.WithDescription("Delete every indexed document. Irreversible."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to proceed")),
	)
	s.mcpServer.AddTool(clearTool, mcp.NewTypedToolHandler(s.handleClear))
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest, args AskArgs) (AskResponse, error) {
	msg, out, err := s.asker.Ask(ctx, args.Query)
	if err != nil {
		s.logger.Warn("MCP Ask: Query rejected", "error", err, "size", len(args.Query))
		return AskResponse{}, fmt.Errorf("ask failed: %w", err)
	}
	return AskResponse{
		Answer:   msg.Content,
		Markup:   msg.Markup,
		Markdown: msg.Source,
		Outcome:  out,
	}, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.docs.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

var errNotConfirmed = errors.New("clear_documents requires confirm=true")

func (s *Server) handleClear(ctx context.Context, request mcp.CallToolRequest, args ClearArgs) (*mcp.CallToolResult, error) {
	if !args.Confirm {
		return mcp.NewToolResultError(errNotConfirmed.Error()), nil
	}
	msg, err := s.docs.Clear(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
	}
	s.logger.Info("MCP: Documents cleared")
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) registerResources() {
	// EXPOSE: ragchat://documents
	s.mcpServer.AddResource(mcp.NewResource(DocumentsURI, "Indexed Documents",
		mcp.WithMIMEType("application/json"),
	), s.readDocuments)
}

func (s *Server) readDocuments(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(names)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DocumentsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
