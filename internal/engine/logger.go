package engine

import (
	"fmt"
	"strings"

	"prosperitybt/types"
)

// maxLogLength is the exchange's budget for one timestamp's log payload.
const maxLogLength = 3750

// sandboxLogger buffers a trader's log output for the current timestamp.
type sandboxLogger struct {
	buf strings.Builder
}

func (l *sandboxLogger) Logf(format string, args ...any) {
	fmt.Fprintf(&l.buf, format, args...)
	l.buf.WriteByte('\n')
}

// drain returns what was logged since the last drain and resets the buffer.
func (l *sandboxLogger) drain() string {
	out := l.buf.String()
	l.buf.Reset()
	return out
}

// truncate caps a string at max bytes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// strategyAPI is the engine-side implementation of StrategyAPI.
type strategyAPI struct {
	log    *sandboxLogger
	limits map[types.Product]int
}

func (a *strategyAPI) Logf(format string, args ...any) {
	a.log.Logf(format, args...)
}

func (a *strategyAPI) Limit(product types.Product) int {
	return a.limits[product]
}
