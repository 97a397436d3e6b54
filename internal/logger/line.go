package logger

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// lineTimeFormat is dd-MM-yyyy - HH:mm:ss.
const lineTimeFormat = "02-01-2006 - 15:04:05"

// LineHandler writes plain "dd-MM-yyyy - HH:mm:ss [ LEVEL ] message" lines,
// the format of the tool's log file. Attributes follow the message as
// key=value pairs.
type LineHandler struct {
	opts slog.HandlerOptions
	w    io.Writer
	mu   *sync.Mutex
	set  attrSet
}

func NewLineHandler(w io.Writer, opts *slog.HandlerOptions) *LineHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &LineHandler{opts: *opts, w: w, mu: &sync.Mutex{}}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= minLevel(h.opts)
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = r.Time.AppendFormat(buf, lineTimeFormat)
	buf = append(buf, " [ "...)
	buf = append(buf, lineLevel(r.Level)...)
	buf = append(buf, " ] "...)
	buf = append(buf, r.Message...)
	if len(h.set.attrs) > 0 || r.NumAttrs() > 0 {
		buf = append(buf, ' ')
		buf = h.set.appendRecord(buf, r)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LineHandler{opts: h.opts, w: h.w, mu: h.mu, set: h.set.with(attrs)}
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &LineHandler{opts: h.opts, w: h.w, mu: h.mu, set: h.set.withGroup(name)}
}

func lineLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
