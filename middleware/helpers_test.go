package middleware_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/felixgeelhaar/rpc-go/middleware"
	"github.com/felixgeelhaar/rpc-go/protocol"
)

func call(method string) *protocol.Request {
	return &protocol.Request{JSONRPC: "2.0", ID: json.RawMessage(`"c-1"`), Method: method}
}

func notification(method string) *protocol.Request {
	return &protocol.Request{JSONRPC: "2.0", Method: method}
}

func okHandler(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, "ok")
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, fields []middleware.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: m})
}

func (l *recordingLogger) Info(msg string, fields ...middleware.Field)  { l.add("info", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...middleware.Field) { l.add("error", msg, fields) }
func (l *recordingLogger) Debug(msg string, fields ...middleware.Field) { l.add("debug", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...middleware.Field)  { l.add("warn", msg, fields) }

func (l *recordingLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), l.entries...)
}
