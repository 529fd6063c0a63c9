// Package transcript models timed video captions.
package transcript

import (
	"strconv"
	"strings"
)

// Segment is one timed caption line.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Transcript is an ordered list of caption segments.
type Transcript []Segment

// Text joins the segments as "{start}s: {text}" pairs separated by spaces.
func (t Transcript) Text() string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = formatSeconds(s.Start) + "s: " + s.Text
	}
	return strings.Join(parts, " ")
}

// formatSeconds prints whole seconds with a trailing ".0" so that 3 and 3.5
// render as "3.0" and "3.5".
func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
