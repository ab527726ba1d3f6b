package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/ragchat/internal/config"
	"github.com/aretw0/ragchat/internal/presentation/tui"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/markup"
)

// ErrQueryFailed is returned by RunAsk when the exchange did not end in success.
var ErrQueryFailed = errors.New("query did not succeed")

// AskResult is the JSON document printed by `ask --json`.
type AskResult struct {
	Message domain.Message `json:"message"`
	Outcome domain.Outcome `json:"outcome"`
}

// RunAsk sends one query, prints the terminal message and reports failure
// outcomes as ErrQueryFailed.
func RunAsk(ctx context.Context, cfg config.Config, query string, out io.Writer) error {
	logger := createLogger(cfg)
	stack, err := NewStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	msg, outcome, err := stack.Client.Ask(ctx, query)
	if err != nil {
		return err
	}

	if cfg.JSON {
		enc := json.NewEncoder(out)
		if err := enc.Encode(AskResult{Message: msg, Outcome: outcome}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, strings.TrimSpace(renderAnswer(msg, tui.NewRenderer(colorEnabled(cfg, out)))))
	}

	if outcome.Kind != domain.OutcomeSuccess {
		if outcome.Detail != "" {
			return fmt.Errorf("%w: %s (%s)", ErrQueryFailed, outcome.Kind, outcome.Detail)
		}
		return fmt.Errorf("%w: %s", ErrQueryFailed, outcome.Kind)
	}
	return nil
}

func renderAnswer(msg domain.Message, render func(string) (string, error)) string {
	if !msg.Markup {
		return msg.Content
	}
	if msg.Source != "" {
		if out, err := render(msg.Source); err == nil {
			return out
		}
	}
	return markup.PlainText(msg.Content)
}
