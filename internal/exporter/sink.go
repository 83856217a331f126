package exporter

import (
	"bytes"
	"io"
	"net/http"
)

// Sink is the output for one export: a write-once text stream with metadata
// attached out of band before any body bytes are written.
type Sink interface {
	io.Writer

	// SetHeader attaches a metadata entry to the sink.
	SetHeader(key string, value string)
}

type httpSink struct {
	w http.ResponseWriter
}

var _ Sink = (*httpSink)(nil)

// NewHTTPSink returns a Sink that writes the export as the HTTP response.
func NewHTTPSink(w http.ResponseWriter) Sink {
	return &httpSink{w}
}

func (s *httpSink) SetHeader(key string, value string) {
	s.w.Header().Set(key, value)
}

func (s *httpSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// BufferSink is an in-memory Sink used by the CLI and in tests.
type BufferSink struct {
	bytes.Buffer
	headers map[string]string
}

var _ Sink = (*BufferSink)(nil)

func NewBufferSink() *BufferSink {
	return &BufferSink{headers: make(map[string]string)}
}

func (s *BufferSink) SetHeader(key string, value string) {
	s.headers[key] = value
}

// Header returns the value of a previously attached metadata entry.
func (s *BufferSink) Header(key string) string {
	return s.headers[key]
}
