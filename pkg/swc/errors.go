package swc

import "fmt"

// ParseError reports a malformed data line. Parsing stops at the first one.
type ParseError struct {
	Path string // empty when parsing from a reader
	Line int    // 1-based line number in the input
	Text string // offending line, trimmed
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %s: %q", e.Path, e.Line, e.Msg, e.Text)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}
