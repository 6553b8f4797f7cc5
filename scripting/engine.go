package scripting

import (
	"context"
)

// Engine represents a scripting engine used to run user-defined detector
// scripts against reconstructed window text.
type Engine interface {
	// Detect evaluates a detector script with the window text bound to the
	// global `text` and returns the candidate spans the script produced.
	// A script yields an array of {start, end, text} objects where start/end
	// are offsets into `text` and text is the reassembled candidate to look
	// up in the vocabulary.
	Detect(ctx context.Context, script, text string) ([]Candidate, error)
}

// Candidate is one span a detector script recovered from window text.
type Candidate struct {
	Start int
	End   int
	Text  string
}
