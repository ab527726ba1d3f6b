package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/controller"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/aretw0/ragchat/pkg/transcript"
)

// Chat is the part of the controller the loop drives.
type Chat interface {
	Submit(ctx context.Context, query string) (*controller.Session, error)
	Cancel() bool
	Transcript() *transcript.Transcript
	ActivityLog() *transcript.ActivityLog
}

// Documents is the document store plus local file upload.
type Documents interface {
	ports.DocumentStore
	UploadPaths(ctx context.Context, paths ...string) (ports.UploadResult, error)
}

// Runner handles the execution loop of the chat using a provided IOHandler.
type Runner struct {
	Chat       Chat
	Handler    IOHandler
	Documents  Documents
	Logger     *slog.Logger
	Interrupts <-chan struct{}

	subscribeOnce sync.Once
	handler       IOHandler
	background    sync.WaitGroup
}

// NewRunner creates a new Runner with options.
func NewRunner(chat Chat, opts ...Option) *Runner {
	r := &Runner{
		Chat:   chat,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads input until EOF, "exit"/"quit", an interrupt at the prompt, or ctx
// is done. Pending background work (document list refreshes) is awaited
// before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	if r.Chat == nil {
		return errors.New("runner: no chat configured")
	}
	handler := r.resolveHandler()
	r.subscribe(ctx, handler)
	defer r.background.Wait()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		line, err := handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if errors.Is(err, io.EOF) || signals.Context().Err() != nil {
				r.Logger.Debug("input closed", "reason", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		quit := r.dispatch(ctx, signals, handler, line)
		if quit {
			return nil
		}
	}
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r.Handler
}

// subscribe forwards transcript and log changes to the handler. The listeners
// are registered once per Runner.
func (r *Runner) subscribe(ctx context.Context, handler IOHandler) {
	r.subscribeOnce.Do(func() {
		r.handler = handler
		r.Chat.Transcript().Subscribe(func(c transcript.Change) {
			if err := r.handler.Message(ctx, c); err != nil {
				r.Logger.Warn("failed to present message", "error", err)
			}
		})
		r.Chat.ActivityLog().Subscribe(func(e domain.LogEntry) {
			if err := r.handler.Log(ctx, e); err != nil {
				r.Logger.Warn("failed to present log entry", "error", err)
			}
		})
	})
}

// ask submits query and blocks until its session finalizes. An interrupt
// during the wait cancels the session and re-arms the signal listener.
func (r *Runner) ask(ctx context.Context, signals *SignalManager, query string) {
	s, err := r.Chat.Submit(ctx, query)
	if err != nil {
		// Rejections are already in the activity log.
		r.Logger.Debug("query rejected", "error", err)
		return
	}
	if s == nil {
		return
	}

	select {
	case <-s.Done():
		return
	case <-signals.Context().Done():
		r.Logger.Debug("interrupt during query", "session_id", s.ID())
		r.Chat.Cancel()
		signals.Reset()
	case <-r.Interrupts:
		r.Logger.Debug("interrupt during query", "session_id", s.ID())
		r.Chat.Cancel()
	}
	<-s.Done()
}
