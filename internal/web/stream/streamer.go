// Package stream writes newline-delimited JSON frames to a response and
// flushes after each one.
package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ContentType is the media type of an NDJSON document stream
const ContentType = "application/x-ndjson"

// Streamer writes one JSON value per line, flushing after each
type Streamer struct {
	w       io.Writer
	flusher http.Flusher
	encoder *json.Encoder
}

// New creates a streamer over an HTTP response. The writer must support
// flushing.
func New(w http.ResponseWriter) (*Streamer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	return &Streamer{w: w, flusher: flusher, encoder: json.NewEncoder(w)}, nil
}

// NewWriter creates a streamer over a plain writer, such as stdout
func NewWriter(w io.Writer) *Streamer {
	s := &Streamer{w: w, encoder: json.NewEncoder(w)}
	if f, ok := w.(http.Flusher); ok {
		s.flusher = f
	}
	return s
}

// WriteFrame encodes v as a single line and flushes
func (s *Streamer) WriteFrame(v interface{}) error {
	if err := s.encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	s.Flush()
	return nil
}

// Flush pushes buffered bytes to the client
func (s *Streamer) Flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
