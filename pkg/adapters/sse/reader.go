package sse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the maximum allowed size for a single SSE frame (64KB).
const MaxFrameSize = 64 * 1024

// ErrFrameTooLarge is returned when a frame exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("sse frame too large")

// Frame is one dispatched Server-Sent Event.
type Frame struct {
	Event string
	ID    string
	Data  []byte
}

// Reader parses Server-Sent Events from a stream.
type Reader struct {
	reader *bufio.Reader
}

const readBufferSize = 4096

// NewReader creates a new SSE reader from an io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: bufio.NewReaderSize(r, readBufferSize),
	}
}

// ReadFrame reads the next frame that carries data.
// Comment lines and frames without data lines are skipped; multiple data
// lines are joined with "\n". Returns io.EOF when the stream ends, dropping
// a frame whose terminating blank line never arrived.
func (r *Reader) ReadFrame() (Frame, error) {
	var (
		frame Frame
		data  [][]byte
		size  int
	)

	for {
		line, err := r.readLine(MaxFrameSize - size)
		if err != nil {
			return Frame{}, err
		}
		size += len(line)

		line = bytes.TrimRight(line, "\r\n")

		// Empty line dispatches the frame.
		if len(line) == 0 {
			if len(data) > 0 {
				frame.Data = bytes.Join(data, []byte("\n"))
				return frame, nil
			}
			frame, size = Frame{}, 0
			continue
		}

		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))

		switch string(field) {
		case "event":
			frame.Event = string(value)
		case "data":
			data = append(data, append([]byte(nil), value...))
		case "id":
			frame.ID = string(value)
		}
		// Ignore other fields (retry:, unknown)
	}
}

// readLine reads one newline-terminated line of at most limit bytes.
// Memory stays bounded by limit plus the read buffer.
func (r *Reader) readLine(limit int) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.reader.ReadSlice('\n')
		if len(line)+len(chunk) > limit {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrFrameTooLarge, MaxFrameSize)
		}
		line = append(line, chunk...)
		switch {
		case err == nil:
			return line, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return nil, err
		}
	}
}
