package gui

import "strings"

// Transcript is the text shown in the result area.  It is only touched
// on the fyne main goroutine.
type Transcript struct {
	lines []string
}

// Append adds one line.
func (t *Transcript) Append(line string) {
	t.lines = append(t.lines, line)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.lines = t.lines[:0]
}

// Len returns the number of lines.
func (t *Transcript) Len() int { return len(t.lines) }

// String renders the transcript with one line per row.
func (t *Transcript) String() string {
	return strings.Join(t.lines, "\n")
}
