// Package sseutil reads and writes Server-Sent Event streams. Adapted from
// pkg/providerutils/streaming/sse.go, split into a reader used for consuming
// the upstream's event stream and a writer used for framing the gateway's own
// client-facing response, which differ in what "done" looks like (Anthropic
// has no sentinel; ChatCompletions ends on a literal `data: [DONE]`).
package sseutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Event is a single parsed Server-Sent Event record.
type Event struct {
	Event string
	Data  string
	ID    string
	Retry int
}

// Reader parses Server-Sent Events from a stream, one at a time.
type Reader struct {
	scanner *bufio.Scanner
	err     error
}

// NewReader wraps r in an SSE-framing reader. The scanner's buffer is grown
// well past bufio's 64KiB default since a single input_json_delta or base64
// image payload can exceed it.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next event, or io.EOF when the stream ends cleanly.
func (p *Reader) Next() (*Event, error) {
	if p.err != nil {
		return nil, p.err
	}

	event := &Event{}
	var dataLines []string

	for p.scanner.Scan() {
		line := p.scanner.Text()

		if line == "" {
			if len(dataLines) > 0 || event.Event != "" {
				event.Data = strings.Join(dataLines, "\n")
				return event, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := line[:colonIdx]
		value := line[colonIdx+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}

		switch field {
		case "event":
			event.Event = value
		case "data":
			dataLines = append(dataLines, value)
		case "id":
			event.ID = value
		case "retry":
			var retry int
			_, _ = fmt.Sscanf(value, "%d", &retry)
			event.Retry = retry
		}
	}

	if err := p.scanner.Err(); err != nil {
		p.err = err
		return nil, err
	}

	if len(dataLines) > 0 || event.Event != "" {
		event.Data = strings.Join(dataLines, "\n")
		p.err = io.EOF
		return event, nil
	}

	p.err = io.EOF
	return nil, io.EOF
}

// Err returns the terminal error, or nil if the stream ended cleanly.
func (p *Reader) Err() error {
	if p.err == io.EOF {
		return nil
	}
	return p.err
}

// Writer frames client-facing SSE output.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for SSE-framed writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent writes a full event record.
func (w *Writer) WriteEvent(event Event) error {
	var buf bytes.Buffer

	if event.Event != "" {
		buf.WriteString(fmt.Sprintf("event: %s\n", event.Event))
	}
	if event.ID != "" {
		buf.WriteString(fmt.Sprintf("id: %s\n", event.ID))
	}
	if event.Retry > 0 {
		buf.WriteString(fmt.Sprintf("retry: %d\n", event.Retry))
	}
	for _, line := range strings.Split(event.Data, "\n") {
		buf.WriteString(fmt.Sprintf("data: %s\n", line))
	}
	buf.WriteString("\n")

	_, err := w.w.Write(buf.Bytes())
	return err
}

// WriteNamedEvent writes an {event, data} pair, the shape every Anthropic SSE
// frame uses.
func (w *Writer) WriteNamedEvent(eventType, data string) error {
	return w.WriteEvent(Event{Event: eventType, Data: data})
}

// WriteData writes a bare data-only event, the shape ChatCompletions chunks
// use (no `event:` line).
func (w *Writer) WriteData(data string) error {
	return w.WriteEvent(Event{Data: data})
}

// WriteDone writes the ChatCompletions stream-end sentinel.
func (w *Writer) WriteDone() error {
	return w.WriteData("[DONE]")
}

// IsDoneSentinel reports whether data is the ChatCompletions `[DONE]`
// sentinel.
func IsDoneSentinel(data string) bool {
	return strings.TrimSpace(data) == "[DONE]"
}
