package runner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"
)

type inputResult struct {
	text string
	err  error
}

// linePump reads lines in the background so Input can honour cancellation.
type linePump struct {
	reader    *bufio.Reader
	inputChan chan inputResult
	startOnce sync.Once
}

func newLinePump(r io.Reader) *linePump {
	return &linePump{reader: bufio.NewReader(r)}
}

func (p *linePump) start() {
	p.startOnce.Do(func() {
		p.inputChan = make(chan inputResult)
		go p.pump()
	})
}

func (p *linePump) pump() {
	for {
		text, err := p.reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			p.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err == io.EOF {
				close(p.inputChan)
				return
			}
			p.inputChan <- inputResult{err: err}
			// Backoff for non-fatal errors to prevent CPU spikes on persistent failure
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// next returns the next trimmed line.
func (p *linePump) next(ctx context.Context) (string, error) {
	p.start()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

// terminalSafe removes control characters (ANSI escapes included) from text
// that comes from the backend before it reaches a terminal.
func terminalSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "true":
		return true
	}
	return false
}
