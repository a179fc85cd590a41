package docstring

import (
	"strings"
)

var escapes = map[string]string{
	"lb": "{",
	"rb": "}",
	"lt": "<",
	"gt": ">",
}

// renderInline converts epytext inline markup (B{bold}, L{text<target>}, ...)
// into plain text. Unbalanced braces are kept literally and reported.
func renderInline(s string, line int) (string, *ParseError) {
	var out strings.Builder
	var firstErr *ParseError

	for i := 0; i < len(s); {
		c := s[i]
		isTag := c >= 'A' && c <= 'Z' && i+1 < len(s) && s[i+1] == '{'
		if !isTag && c != '{' {
			if c == '}' && firstErr == nil {
				firstErr = &ParseError{Line: line, Message: "unbalanced '}'"}
			}
			out.WriteByte(c)
			i++
			continue
		}

		open := i
		if isTag {
			open = i + 1
		}
		end := matchBrace(s, open)
		if end < 0 {
			if firstErr == nil {
				firstErr = &ParseError{Line: line, Message: "unbalanced '{'"}
			}
			out.WriteString(s[i:])
			break
		}

		inner, err := renderInline(s[open+1:end], line)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if !isTag {
			out.WriteString("{" + inner + "}")
		} else {
			out.WriteString(applyTag(c, s[open+1:end], inner))
		}
		i = end + 1
	}
	return out.String(), firstErr
}

func applyTag(tag byte, raw, inner string) string {
	switch tag {
	case 'E':
		if r, ok := escapes[raw]; ok {
			return r
		}
		return inner
	case 'L', 'U':
		// L{text<target>} shows only the text.
		if lt := strings.LastIndex(inner, "<"); lt > 0 && strings.HasSuffix(inner, ">") {
			return strings.TrimSpace(inner[:lt])
		}
		return inner
	case 'G':
		return ""
	default:
		return inner
	}
}

// matchBrace returns the index of the brace closing the one at open, or -1.
func matchBrace(s string, open int) int {
	depth := 0
	for j := open; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}
