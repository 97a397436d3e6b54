package main

import (
	"context"
	"fmt"
	"io"

	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

// newProgress prints whole-percent updates on one line of w and stops the
// operation once ctx is cancelled.
func newProgress(ctx context.Context, w io.Writer, label string) fastfile.ProgressFunc {
	last := -1
	return func(p float64) bool {
		pct := min(max(int(p), 0), 100)
		if pct != last {
			last = pct
			_, _ = fmt.Fprintf(w, "\r%s %3d%%", label, pct)
			if pct == 100 {
				_, _ = fmt.Fprintln(w)
			}
		}
		return ctx.Err() == nil
	}
}
