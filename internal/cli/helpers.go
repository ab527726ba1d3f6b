package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/ragchat/internal/config"
	"github.com/aretw0/ragchat/internal/logging"
	"golang.org/x/term"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout chat UI).
func createLogger(cfg config.Config) *slog.Logger {
	if !cfg.Debug {
		return logging.NewNop()
	}
	if cfg.JSON {
		return logging.NewJSON(os.Stderr, slog.LevelDebug)
	}
	return logging.New(slog.LevelDebug)
}

// colorEnabled reports whether w is a terminal that should get ANSI styling.
func colorEnabled(cfg config.Config, w io.Writer) bool {
	if cfg.NoColor || cfg.JSON || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(prompt string) (bool, error)

// ErrNotInteractive is returned when a confirmation is needed but stdin is not a terminal.
var ErrNotInteractive = errors.New("confirmation required: stdin is not a terminal (use --yes)")

// TerminalConfirm prompts on out and reads the answer from in, refusing when
// in is not a terminal.
func TerminalConfirm(in *os.File, out io.Writer) ConfirmFunc {
	return func(prompt string) (bool, error) {
		if !term.IsTerminal(int(in.Fd())) {
			return false, ErrNotInteractive
		}
		return ReaderConfirm(in, out)(prompt)
	}
}

// ReaderConfirm prompts on out and reads one line from in.
func ReaderConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	return func(prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError maps user interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
