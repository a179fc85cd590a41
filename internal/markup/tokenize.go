package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokName tokenKind = iota
	tokString
	tokNumber
	tokSpace
	tokNewline
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits a Python expression into coarse tokens. Comments are dropped.
func tokenize(src string) []token {
	var toks []token
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case r == '\n':
			toks = append(toks, token{tokNewline, "\n"})
			i += size
		case r == '#':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = len(src)
			} else {
				i += end
			}
		case unicode.IsSpace(r):
			j := i
			for j < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[j:])
				if r2 == '\n' || !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			toks = append(toks, token{tokSpace, src[i:j]})
			i = j
		case r == '"' || r == '\'':
			j := scanString(src, i)
			toks = append(toks, token{tokString, src[i:j]})
			i = j
		case isNameStart(r):
			j := scanName(src, i)
			if j < len(src) && (src[j] == '"' || src[j] == '\'') && isStringPrefix(src[i:j]) {
				j = scanString(src, j)
				toks = append(toks, token{tokString, src[i:j]})
			} else {
				toks = append(toks, token{tokName, src[i:j]})
			}
			i = j
		case r >= '0' && r <= '9':
			j := i
			for j < len(src) {
				c := src[j]
				if c == '.' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
					j++
					continue
				}
				break
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		default:
			toks = append(toks, token{tokPunct, src[i : i+size]})
			i += size
		}
	}
	return toks
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanName consumes a dotted name starting at i.
func scanName(src string, i int) int {
	j := i
	for j < len(src) {
		r, size := utf8.DecodeRuneInString(src[j:])
		if isNamePart(r) {
			j += size
			continue
		}
		if r == '.' && j+1 < len(src) {
			next, _ := utf8.DecodeRuneInString(src[j+1:])
			if isNameStart(next) {
				j += size
				continue
			}
		}
		break
	}
	return j
}

func isStringPrefix(s string) bool {
	if len(s) > 2 {
		return false
	}
	for _, c := range strings.ToLower(s) {
		if c != 'r' && c != 'b' && c != 'u' && c != 'f' {
			return false
		}
	}
	return true
}

// scanString consumes a string literal whose opening quote is at i.
// An unterminated literal runs to the end of src.
func scanString(src string, i int) int {
	q := src[i]
	delim := string(q)
	if strings.HasPrefix(src[i:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	j := i + len(delim)
	for j < len(src) {
		if src[j] == '\\' {
			j += 2
			continue
		}
		if strings.HasPrefix(src[j:], delim) {
			return j + len(delim)
		}
		if len(delim) == 1 && src[j] == '\n' {
			return j
		}
		j++
	}
	return len(src)
}
