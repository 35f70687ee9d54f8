package lexer

import "fmt"

// LexError is returned when no lexing rule applies to the remaining input.
// It carries the unscanned slice and its position so callers can report a
// precise offset.
type LexError struct {
	Remaining string
	Offset    int
	Line      int
	Column    int
	Message   string
}

func (e *LexError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lex error at %d:%d (offset %d): %s", e.Line, e.Column, e.Offset, e.Message)
	}
	snippet := e.Remaining
	if len(snippet) > 20 {
		snippet = snippet[:20] + "..."
	}
	return fmt.Sprintf("lex error at %d:%d (offset %d): unrecognized input %q", e.Line, e.Column, e.Offset, snippet)
}
