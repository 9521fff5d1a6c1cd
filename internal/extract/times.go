package extract

import (
	"fmt"
	"time"
)

// WithOffset parses a timestamp with the given layout, shifts it back by
// the given number of minutes (negative values shift forward) and
// reformats it with the output layout.
func (e *Extractor) WithOffset(value, inLayout, outLayout string, minutes int) (string, error) {
	parsed, err := time.Parse(inLayout, value)
	if err != nil {
		return "", fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	shifted := parsed.Add(-time.Duration(minutes) * time.Minute)
	return shifted.Format(outLayout), nil
}

// StopTimeNow returns the current time in the given layout. Used as the
// default when a stop-time variable is absent from the description.
func (e *Extractor) StopTimeNow(layout string) string {
	return time.Now().Format(layout)
}
