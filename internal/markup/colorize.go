// Package markup renders Python expressions to plain text and linked HTML,
// and provides the tag-stripping helpers used when flattening them.
package markup

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// WrapMarker ends a line that was broken because it exceeded the line length.
	WrapMarker = "↵"
	// Ellipsis ends the last line kept when output is truncated.
	Ellipsis = "..."
)

// Keywords and constants that are never linked.
var unlinked = map[string]bool{
	"None": true, "True": true, "False": true, "and": true, "or": true,
	"not": true, "in": true, "is": true, "if": true, "else": true,
	"lambda": true, "for": true, "await": true, "yield": true, "async": true,
}

// Doc is a rendered expression.
type Doc struct {
	lines [][]token
	wraps []bool
	trunc bool
}

// Text returns the plain-text rendering.
func (d *Doc) Text() string {
	return d.render(false)
}

// HTML returns the rendering wrapped in <code>, with names linked.
func (d *Doc) HTML() string {
	return "<code>" + d.render(true) + "</code>"
}

func (d *Doc) render(markup bool) string {
	var b strings.Builder
	for i, line := range d.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, t := range line {
			switch {
			case !markup:
				b.WriteString(t.text)
			case t.kind == tokName && !unlinked[t.text]:
				b.WriteString(`<a href="#` + html.EscapeString(t.text) + `">` + html.EscapeString(t.text) + `</a>`)
			default:
				b.WriteString(html.EscapeString(t.text))
			}
		}
		if i < len(d.wraps) && d.wraps[i] {
			b.WriteString(WrapMarker)
		}
	}
	if d.trunc {
		b.WriteString(Ellipsis)
	}
	return b.String()
}

// Colorizer renders expressions. LineLen and MaxLines bound block renderings;
// zero disables the corresponding limit.
type Colorizer struct {
	LineLen  int
	MaxLines int
}

// Inline renders source on a single line. Whitespace runs outside string
// literals collapse to one space and are dropped inside brackets' edges.
func (c Colorizer) Inline(source string) *Doc {
	return &Doc{lines: [][]token{normalizeLine(tokenize(source), true)}}
}

// Block renders source over multiple lines, wrapping lines longer than
// LineLen and keeping at most MaxLines lines.
func (c Colorizer) Block(source string) *Doc {
	var lines [][]token
	var cur []token
	for _, t := range tokenize(source) {
		if t.kind == tokNewline {
			lines = append(lines, cur)
			cur = nil
			continue
		}
		if t.kind == tokString && strings.Contains(t.text, "\n") {
			parts := strings.Split(t.text, "\n")
			for _, p := range parts[:len(parts)-1] {
				lines = append(lines, append(cur, token{tokString, p}))
				cur = nil
			}
			t.text = parts[len(parts)-1]
		}
		cur = append(cur, t)
	}
	lines = append(lines, cur)
	lines = dedentLines(lines)

	d := &Doc{}
	for _, line := range lines {
		for _, seg := range wrapLine(normalizeLine(line, false), c.LineLen) {
			d.lines = append(d.lines, seg)
			d.wraps = append(d.wraps, true)
		}
		d.wraps[len(d.wraps)-1] = false
	}
	for len(d.lines) > 1 && len(d.lines[len(d.lines)-1]) == 0 {
		d.lines = d.lines[:len(d.lines)-1]
		d.wraps = d.wraps[:len(d.wraps)-1]
	}

	if c.MaxLines > 0 && len(d.lines) > c.MaxLines {
		d.lines = d.lines[:c.MaxLines]
		d.wraps = d.wraps[:c.MaxLines]
		d.wraps[c.MaxLines-1] = false
		d.trunc = true
	}
	return d
}

func isOpen(t token) bool  { return t.kind == tokPunct && strings.Contains("([{", t.text) }
func isClose(t token) bool { return t.kind == tokPunct && strings.Contains(")]}", t.text) }

// normalizeLine collapses whitespace. Leading indentation is kept unless
// inline is set.
func normalizeLine(toks []token, inline bool) []token {
	var out []token
	for i, t := range toks {
		if t.kind == tokNewline {
			t = token{tokSpace, " "}
		}
		if t.kind != tokSpace {
			out = append(out, t)
			continue
		}
		if len(out) == 0 {
			if !inline && i == 0 {
				out = append(out, t)
			}
			continue
		}
		prev := out[len(out)-1]
		if prev.kind == tokSpace || isOpen(prev) {
			continue
		}
		out = append(out, token{tokSpace, " "})
	}

	// Drop spaces before closing brackets and at the end.
	cleaned := out[:0]
	for i, t := range out {
		if t.kind == tokSpace && i > 0 {
			if i == len(out)-1 || isClose(out[i+1]) {
				continue
			}
		}
		cleaned = append(cleaned, t)
	}
	return cleaned
}

// dedentLines removes the common indentation of continuation lines.
func dedentLines(lines [][]token) [][]token {
	margin := -1
	for _, l := range lines[1:] {
		if len(l) == 0 {
			continue
		}
		n := 0
		if l[0].kind == tokSpace {
			n = len(l[0].text)
		}
		if margin < 0 || n < margin {
			margin = n
		}
	}
	if margin <= 0 {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		l := lines[i]
		if len(l) == 0 || l[0].kind != tokSpace {
			continue
		}
		rest := l[0].text[margin:]
		if rest == "" {
			lines[i] = l[1:]
		} else {
			lines[i] = append([]token{{tokSpace, rest}}, l[1:]...)
		}
	}
	return lines
}

// wrapLine splits a line into segments of at most width runes.
func wrapLine(line []token, width int) [][]token {
	if width <= 0 {
		return [][]token{line}
	}
	var segs [][]token
	var cur []token
	n := 0
	for _, t := range line {
		text := t.text
		for text != "" {
			room := width - n
			if room == 0 {
				segs = append(segs, cur)
				cur, n = nil, 0
				room = width
			}
			l := utf8.RuneCountInString(text)
			if l <= room {
				cur = append(cur, token{t.kind, text})
				n += l
				break
			}
			cut := byteIndexOfRune(text, room)
			cur = append(cur, token{t.kind, text[:cut]})
			n += room
			text = text[cut:]
		}
	}
	return append(segs, cur)
}

func byteIndexOfRune(s string, n int) int {
	i := 0
	for n > 0 && i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n--
	}
	return i
}

var (
	tagRe        = regexp.MustCompile(`<.*?>`)
	returnNameRe = regexp.MustCompile(`(?:<a[^>]*>)?(?P<name>[A-Za-z_][A-Za-z0-9_]*)(?:</a>)?`)
)

// StripTags removes every <...> span.
func StripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

// StripCode removes the <code> wrapper tokens.
func StripCode(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "<code>", ""), "</code>", "")
}

// NoReturnName is reported when a return annotation holds no identifier.
const NoReturnName = "None"

// ReturnName extracts the first identifier-like token of a rendered return
// annotation, optionally wrapped in a link. It returns NoReturnName when
// there is none.
func ReturnName(rendered string) string {
	m := returnNameRe.FindStringSubmatch(StripCode(rendered))
	if m == nil {
		return NoReturnName
	}
	return m[returnNameRe.SubexpIndex("name")]
}
