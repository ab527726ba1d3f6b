package runner

import (
	"context"
	"fmt"
	"strings"
)

const helpText = `Commands:
  /upload <paths...>  upload .pdf, .docx or .txt files
  /files              list indexed documents
  /clear              remove all indexed documents
  /log                show the activity log
  /help               show this help
  exit, quit          leave
Anything else is sent as a question. Ctrl+C cancels a running answer.`

// dispatch routes one input line. It reports whether the loop should end.
func (r *Runner) dispatch(ctx context.Context, signals *SignalManager, handler IOHandler, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		if len(fields) == 1 {
			return true
		}
	case "/help":
		r.system(ctx, handler, helpText)
		return false
	case "/log":
		for _, e := range r.Chat.ActivityLog().Entries() {
			if err := handler.Log(ctx, e); err != nil {
				r.Logger.Warn("failed to present log entry", "error", err)
			}
		}
		return false
	case "/upload":
		r.upload(ctx, handler, fields[1:])
		return false
	case "/files":
		r.listFiles(ctx, handler)
		return false
	case "/clear":
		r.clearFiles(ctx, handler)
		return false
	}

	if strings.HasPrefix(fields[0], "/") {
		r.system(ctx, handler, fmt.Sprintf("Unknown command %q. Type /help for the list.", fields[0]))
		return false
	}

	r.ask(ctx, signals, line)
	return false
}

func (r *Runner) system(ctx context.Context, handler IOHandler, msg string) {
	if err := handler.SystemOutput(ctx, msg); err != nil {
		r.Logger.Warn("failed to present system output", "error", err)
	}
}

func (r *Runner) documentsAvailable(ctx context.Context, handler IOHandler) bool {
	if r.Documents == nil {
		r.system(ctx, handler, "Document commands are not available.")
		return false
	}
	return true
}

func (r *Runner) upload(ctx context.Context, handler IOHandler, paths []string) {
	if !r.documentsAvailable(ctx, handler) {
		return
	}
	if len(paths) == 0 {
		r.system(ctx, handler, "Usage: /upload <paths...>")
		return
	}

	res, err := r.Documents.UploadPaths(ctx, paths...)
	if err != nil {
		r.system(ctx, handler, fmt.Sprintf("Upload failed: %v", err))
		return
	}
	r.system(ctx, handler, formatUpload(res.Message, res.Errors))

	// The list refresh does not block the prompt.
	r.background.Add(1)
	go func() {
		defer r.background.Done()
		r.listFiles(ctx, handler)
	}()
}

func (r *Runner) listFiles(ctx context.Context, handler IOHandler) {
	if !r.documentsAvailable(ctx, handler) {
		return
	}
	names, err := r.Documents.List(ctx)
	if err != nil {
		r.system(ctx, handler, fmt.Sprintf("Could not list documents: %v", err))
		return
	}
	r.system(ctx, handler, FormatFileList(names))
}

func (r *Runner) clearFiles(ctx context.Context, handler IOHandler) {
	if !r.documentsAvailable(ctx, handler) {
		return
	}
	ok, err := handler.Confirm(ctx, "Remove all indexed documents?")
	if err != nil {
		r.Logger.Debug("confirmation aborted", "error", err)
		return
	}
	if !ok {
		r.system(ctx, handler, "Clear aborted.")
		return
	}
	msg, err := r.Documents.Clear(ctx)
	if err != nil {
		r.system(ctx, handler, fmt.Sprintf("Clear failed: %v", err))
		return
	}
	r.system(ctx, handler, msg)
}

func formatUpload(message string, errs []string) string {
	if len(errs) == 0 {
		return message
	}
	var b strings.Builder
	b.WriteString(message)
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e)
	}
	return b.String()
}

// FormatFileList renders document names as one line.
func FormatFileList(names []string) string {
	if len(names) == 0 {
		return "No documents indexed."
	}
	return fmt.Sprintf("Documents (%d): %s", len(names), strings.Join(names, ", "))
}
