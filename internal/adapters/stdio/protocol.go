// Package stdio serves the tool service as newline-delimited JSON over a
// pair of streams, normally the stdin and stdout of a child process.
package stdio

import (
	"encoding/json"
	"io"
	"sync"
)

// Methods of the line protocol.
const (
	MethodCall      = "call"
	MethodTools     = "tools"
	MethodStats     = "stats"
	MethodClear     = "clear"
	MethodConfigure = "configure"
)

const maxLineSize = 16 << 20

// Request is one line sent to the server. Params carries the operation
// parameters for call and the cache update for configure.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Name   string          `json:"name,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one line sent back. Exactly one of Result and Error is set.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Status int             `json:"status,omitempty"`
}

// lineWriter serializes whole lines onto w.
type lineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{enc: json.NewEncoder(w)}
}

func (l *lineWriter) write(v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(v)
}
