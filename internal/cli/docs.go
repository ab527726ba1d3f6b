package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/ragchat"
	"github.com/aretw0/ragchat/internal/config"
	"github.com/aretw0/ragchat/pkg/adapters/docstore"
	"github.com/aretw0/ragchat/pkg/runner"
)

// ErrUploadIncomplete is returned when the backend rejected some of the files.
var ErrUploadIncomplete = errors.New("some files were rejected")

func newDocuments(cfg config.Config) (*docstore.Client, error) {
	client, err := ragchat.New(cfg.BaseURL,
		ragchat.WithLogger(createLogger(cfg)),
		ragchat.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}
	return client.Documents(), nil
}

// RunUpload uploads local files and prints the backend's summary.
func RunUpload(ctx context.Context, cfg config.Config, paths []string, out io.Writer) error {
	docs, err := newDocuments(cfg)
	if err != nil {
		return err
	}
	res, err := docs.UploadPaths(ctx, paths...)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Message)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  - %s\n", e)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%w (%d)", ErrUploadIncomplete, len(res.Errors))
	}
	return nil
}

// RunList prints the indexed documents, one per line.
func RunList(ctx context.Context, cfg config.Config, out io.Writer) error {
	docs, err := newDocuments(cfg)
	if err != nil {
		return err
	}
	names, err := docs.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(out, runner.FormatFileList(nil))
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

// RunClear removes every indexed document after confirm agrees. A nil
// confirm skips the question.
func RunClear(ctx context.Context, cfg config.Config, confirm ConfirmFunc, out io.Writer) error {
	if confirm != nil {
		ok, err := confirm("Remove all indexed documents?")
		if err != nil {
			return err
		}
		if !ok {
			printSystemMessage(out, "Clear aborted.")
			return nil
		}
	}
	docs, err := newDocuments(cfg)
	if err != nil {
		return err
	}
	msg, err := docs.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, msg)
	return nil
}
