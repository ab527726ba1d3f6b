package cli

import (
	"context"
	"io"

	"github.com/aretw0/ragchat"
	"github.com/aretw0/ragchat/internal/config"
	"github.com/aretw0/ragchat/internal/presentation/tui"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/runner"
)

// RunChat starts the interactive chat loop on in/out.
func RunChat(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	logger := createLogger(cfg)
	stack, err := NewStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Warn("Failed to release resources", "error", err)
		}
	}()

	r := runner.NewRunner(stack.Client,
		runner.WithLogger(logger),
		runner.WithDocuments(stack.Client.Documents()),
		runner.WithInputHandler(newHandler(cfg, in, out)),
	)
	return handleExecutionError(r.Run(ctx))
}

func newHandler(cfg config.Config, in io.Reader, out io.Writer) runner.IOHandler {
	if cfg.JSON {
		return runner.NewJSONHandler(in, out)
	}

	color := colorEnabled(cfg, out)
	tui.PrintBanner(out, ragchat.Version, cfg.BaseURL, color)
	styler := tui.NewStyler(out, color)

	return runner.NewTextHandler(in, out,
		runner.WithTextHandlerRenderer(tui.NewRenderer(color)),
		runner.WithTextHandlerStyle(func(severity domain.Severity, text string) string {
			return styler.Severity(string(severity), text)
		}),
	)
}
