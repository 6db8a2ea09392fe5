package engine

import "strings"

// kwPrefix marks a keyword argument after rewriting: :at becomes "__kw_at".
const kwPrefix = "__kw_"

// preprocessSource rewrites script source into the form zygomys reads.
// Semicolon comments become // comments, :name keywords become "__kw_name"
// strings, and a hyphen between two identifier characters becomes an
// underscore so kebab-case builtin names resolve. Quoted text is copied
// unchanged, and so is :=.
func preprocessSource(source string) string {
	r := &rewriter{src: source}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		r.step()
	}
	return r.out.String()
}

type rewriter struct {
	src string
	pos int
	out strings.Builder
}

func (r *rewriter) step() {
	c := r.src[r.pos]
	switch {
	case c == '"' || c == '`':
		r.quoted(c)
	case c == ';':
		r.comment()
	case c == ':' && r.peek(1) == '=':
		r.copy(2)
	case c == ':' && isLetter(r.peek(1)):
		r.keyword()
	case c == '-' && r.pos > 0 && isIdentChar(r.src[r.pos-1]) && isLetter(r.peek(1)):
		r.out.WriteByte('_')
		r.pos++
	default:
		r.copy(1)
	}
}

// peek returns the byte n positions ahead, or 0 past the end.
func (r *rewriter) peek(n int) byte {
	if r.pos+n < len(r.src) {
		return r.src[r.pos+n]
	}
	return 0
}

func (r *rewriter) copy(n int) {
	end := min(r.pos+n, len(r.src))
	r.out.WriteString(r.src[r.pos:end])
	r.pos = end
}

// quoted copies a literal through its closing delimiter. Backslash escapes
// only apply inside double quotes.
func (r *rewriter) quoted(delim byte) {
	start := r.pos
	r.pos++
	for r.pos < len(r.src) && r.src[r.pos] != delim {
		if delim == '"' && r.src[r.pos] == '\\' {
			r.pos++
		}
		r.pos++
	}
	r.pos = min(r.pos+1, len(r.src))
	r.out.WriteString(r.src[start:r.pos])
}

// comment collapses a run of ; into // and copies the rest of the line.
func (r *rewriter) comment() {
	r.out.WriteString("//")
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	n := strings.IndexByte(r.src[r.pos:], '\n')
	if n < 0 {
		n = len(r.src) - r.pos
	}
	r.copy(n)
}

// keyword emits :name as a prefixed string literal. Hyphens stay inside
// keyword names.
func (r *rewriter) keyword() {
	end := r.pos + 1
	for end < len(r.src) && (isIdentChar(r.src[end]) || r.src[end] == '-') {
		end++
	}
	r.out.WriteString(`"` + kwPrefix + r.src[r.pos+1:end] + `"`)
	r.pos = end
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || '0' <= c && c <= '9' || c == '_'
}
