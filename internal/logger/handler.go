package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// attrSet carries the attributes and group prefix accumulated through
// WithAttrs and WithGroup for the text handlers in this package.
type attrSet struct {
	group string
	attrs []slog.Attr
}

func (s attrSet) with(attrs []slog.Attr) attrSet {
	merged := make([]slog.Attr, 0, len(s.attrs)+len(attrs))
	merged = append(merged, s.attrs...)
	for _, a := range attrs {
		if s.group != "" {
			a.Key = s.group + "." + a.Key
		}
		merged = append(merged, a)
	}
	return attrSet{group: s.group, attrs: merged}
}

func (s attrSet) withGroup(name string) attrSet {
	g := name
	if s.group != "" {
		g = s.group + "." + name
	}
	return attrSet{group: g, attrs: s.attrs}
}

// appendRecord appends the handler attributes followed by the record's own.
func (s attrSet) appendRecord(buf []byte, r slog.Record) []byte {
	first := true
	for _, a := range s.attrs {
		buf = appendSep(buf, &first)
		buf = appendAttr(buf, a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = appendSep(buf, &first)
		buf = appendAttr(buf, a, s.group)
		return true
	})
	return buf
}

func appendSep(buf []byte, first *bool) []byte {
	if !*first {
		buf = append(buf, ' ')
	}
	*first = false
	return buf
}

func appendAttr(buf []byte, attr slog.Attr, group string) []byte {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}

	buf = append(buf, key...)
	buf = append(buf, '=')

	v := attr.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if needsQuoting(s) {
			buf = append(buf, '"')
			buf = append(buf, s...)
			buf = append(buf, '"')
		} else {
			buf = append(buf, s...)
		}
	case slog.KindTime:
		buf = v.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindDuration:
		buf = append(buf, v.Duration().String()...)
	case slog.KindGroup:
		buf = append(buf, '{')
		for i, a := range v.Group() {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = appendAttr(buf, a, "")
		}
		buf = append(buf, '}')
	default:
		buf = append(buf, fmt.Sprint(v.Any())...)
	}

	return buf
}

func needsQuoting(s string) bool {
	for _, c := range s {
		if c == ' ' || c == '\t' || c == '\n' || c == '"' {
			return true
		}
	}
	return false
}

func minLevel(opts slog.HandlerOptions) slog.Level {
	if opts.Level != nil {
		return opts.Level.Level()
	}
	return slog.LevelInfo
}
