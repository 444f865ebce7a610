package stream

import (
	"io"

	"github.com/copilot-gateway/gateway/pkg/sseutil"
)

// sseEventSource adapts an sseutil.Reader to the EventSource interface.
type sseEventSource struct {
	reader *sseutil.Reader
	closer io.Closer
}

// NewSSEEventSource builds an EventSource that reads Server-Sent Events off
// rc, closing rc when the translator is done with it.
func NewSSEEventSource(rc io.ReadCloser) EventSource {
	return &sseEventSource{reader: sseutil.NewReader(rc), closer: rc}
}

func (s *sseEventSource) Next() (*RawEvent, error) {
	event, err := s.reader.Next()
	if err != nil {
		return nil, err
	}
	return &RawEvent{Event: event.Event, Data: event.Data, ID: event.ID}, nil
}

func (s *sseEventSource) Close() error {
	return s.closer.Close()
}
