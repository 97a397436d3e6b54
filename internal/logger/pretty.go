package logger

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// PrettyHandler writes colored single-line records for terminal output.
type PrettyHandler struct {
	opts slog.HandlerOptions
	w    io.Writer
	mu   *sync.Mutex
	set  attrSet
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: *opts, w: w, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= minLevel(h.opts)
}

// Handle writes "[time] LEVEL message key=value ...".
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	buf = append(buf, colorGray...)
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, time.TimeOnly)
	buf = append(buf, ']')
	buf = append(buf, colorReset...)
	buf = append(buf, ' ')

	buf = append(buf, levelColor(r.Level)...)
	buf = append(buf, colorBold...)
	buf = append(buf, padLevel(r.Level.String())...)
	buf = append(buf, colorReset...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	if len(h.set.attrs) > 0 || r.NumAttrs() > 0 {
		buf = append(buf, ' ')
		buf = append(buf, colorCyan...)
		buf = h.set.appendRecord(buf, r)
		buf = append(buf, colorReset...)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyHandler{opts: h.opts, w: h.w, mu: h.mu, set: h.set.with(attrs)}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &PrettyHandler{opts: h.opts, w: h.w, mu: h.mu, set: h.set.withGroup(name)}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorBlue
	default:
		return colorGray
	}
}

// padLevel pads level names to five columns.
func padLevel(level string) string {
	if len(level) < 5 {
		return level + "     "[:5-len(level)]
	}
	return level
}
