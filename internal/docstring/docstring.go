// Package docstring parses epytext docstrings into a body and a list of fields.
package docstring

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is a tagged annotation of a docstring, such as "@param x: the x value".
type Field struct {
	Tag  string
	Arg  *string
	Body string
}

// ParseError describes markup that could not be understood. Parse errors
// never abort parsing; the offending text is kept as plain text.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

type blockKind int

const (
	blockPara blockKind = iota
	blockHeading
	blockList
	blockLiteral
	blockDoctest
)

type block struct {
	kind  blockKind
	lines []string
}

// Parsed is a parsed docstring.
type Parsed struct {
	Fields []Field

	blocks []block
}

// HasBody reports whether the docstring has any text outside its fields.
func (p *Parsed) HasBody() bool {
	for _, b := range p.blocks {
		for _, l := range b.lines {
			if strings.TrimSpace(l) != "" {
				return true
			}
		}
	}
	return false
}

var summaryRe = regexp.MustCompile(`^(\s*[\w\W]*?\.)(\s|$)`)

// Summary returns the first sentence of the first paragraph. When the
// paragraph has no sentence terminator the whole paragraph is returned.
func (p *Parsed) Summary() string {
	for _, b := range p.blocks {
		switch b.kind {
		case blockPara, blockList:
			text := b.render()
			if m := summaryRe.FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[1])
			}
			return strings.TrimSpace(text)
		}
	}
	if len(p.blocks) > 0 {
		return strings.TrimSpace(p.blocks[0].render())
	}
	return ""
}

// Text renders the body as plain text: paragraphs separated by blank lines.
func (p *Parsed) Text() string {
	parts := make([]string, 0, len(p.blocks))
	for _, b := range p.blocks {
		parts = append(parts, b.render())
	}
	return strings.Join(parts, "\n\n")
}

func (b block) render() string {
	switch b.kind {
	case blockLiteral, blockDoctest:
		return strings.Join(b.lines, "\n")
	case blockHeading:
		text, _ := renderInline(b.lines[0], 0)
		return text
	case blockList:
		items := make([]string, 0, len(b.lines))
		for _, l := range b.lines {
			text, _ := renderInline(l, 0)
			items = append(items, text)
		}
		return strings.Join(items, "\n")
	default:
		text, _ := renderInline(strings.Join(b.lines, " "), 0)
		return text
	}
}

var (
	fieldRe    = regexp.MustCompile(`^@(\w+)(?:\s+([^:]*?))?\s*:\s*(.*)$`)
	listItemRe = regexp.MustCompile(`^(?:[-*]|\d+\.)\s+`)
	underline  = regexp.MustCompile(`^(={2,}|-{2,}|~{2,})$`)
)

// Parse parses epytext markup. It always returns a non-nil docstring.
func Parse(text string) (*Parsed, []*ParseError) {
	lines := cleandoc(text)
	p := &Parsed{}
	var errs []*ParseError

	bodyEnd := len(lines)
	for i, l := range lines {
		if indentOf(l) == 0 && strings.HasPrefix(l, "@") {
			bodyEnd = i
			break
		}
	}

	p.blocks, errs = parseBody(lines[:bodyEnd], errs)
	p.Fields, errs = parseFields(lines[bodyEnd:], bodyEnd, errs)
	return p, errs
}

func parseBody(lines []string, errs []*ParseError) ([]block, []*ParseError) {
	var blocks []block
	literalNext := false

	for i := 0; i < len(lines); {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		start := i
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			i++
		}
		chunk := lines[start:i]

		switch {
		case literalNext && indentOf(chunk[0]) > 0:
			blocks = append(blocks, block{kind: blockLiteral, lines: dedent(chunk)})
			continue
		case strings.HasPrefix(strings.TrimSpace(chunk[0]), ">>>"):
			blocks = append(blocks, block{kind: blockDoctest, lines: dedent(chunk)})
			literalNext = false
			continue
		}
		literalNext = false

		if len(chunk) == 2 && underline.MatchString(strings.TrimSpace(chunk[1])) {
			blocks = append(blocks, block{kind: blockHeading, lines: []string{strings.TrimSpace(chunk[0])}})
			continue
		}

		b := block{kind: blockPara}
		for _, l := range chunk {
			t := strings.TrimSpace(l)
			if listItemRe.MatchString(t) {
				b.kind = blockList
				b.lines = append(b.lines, t)
				continue
			}
			if b.kind == blockList && len(b.lines) > 0 {
				b.lines[len(b.lines)-1] += " " + t
				continue
			}
			b.lines = append(b.lines, t)
		}

		last := b.lines[len(b.lines)-1]
		if strings.HasSuffix(last, "::") {
			b.lines[len(b.lines)-1] = strings.TrimSuffix(last, ":")
			literalNext = true
		}
		if _, err := renderInline(strings.Join(b.lines, " "), start+1); err != nil {
			errs = append(errs, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, errs
}

func parseFields(lines []string, offset int, errs []*ParseError) ([]Field, []*ParseError) {
	var fields []Field
	for i := 0; i < len(lines); {
		line := lines[i]
		lineNo := offset + i + 1
		m := fieldRe.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) != "" {
				errs = append(errs, &ParseError{Line: lineNo, Message: fmt.Sprintf("bad field: %q", strings.TrimSpace(line))})
				if len(fields) > 0 {
					last := &fields[len(fields)-1]
					last.Body = strings.TrimSpace(last.Body + " " + strings.TrimSpace(line))
				}
			}
			i++
			continue
		}

		body := []string{m[3]}
		i++
		for i < len(lines) && (strings.TrimSpace(lines[i]) == "" || indentOf(lines[i]) > 0) {
			body = append(body, lines[i])
			i++
		}

		f := Field{Tag: m[1]}
		if arg := strings.TrimSpace(m[2]); arg != "" {
			f.Arg = &arg
		}
		blocks, berrs := parseBody(body, nil)
		for _, e := range berrs {
			e.Line += lineNo - 1
		}
		errs = append(errs, berrs...)
		parts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			parts = append(parts, b.render())
		}
		f.Body = strings.Join(parts, "\n\n")
		fields = append(fields, f)
	}
	return fields, errs
}

// expandTabs replaces each tab with spaces up to the next multiple of size.
func expandTabs(line string, size int) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := size - col%size
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// Clean normalizes raw docstring text the way Python's inspect.cleandoc does.
func Clean(text string) string {
	return strings.Join(cleandoc(text), "\n")
}

// cleandoc expands tabs, strips the common indentation of all lines but the
// first, and drops leading and trailing blank lines.
func cleandoc(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = expandTabs(l, 8)
	}
	lines[0] = strings.TrimLeft(lines[0], " ")

	margin := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := indentOf(l); margin < 0 || n < margin {
			margin = n
		}
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
			continue
		}
		if margin > 0 {
			lines[i] = lines[i][margin:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func dedent(lines []string) []string {
	margin := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := indentOf(l); margin < 0 || n < margin {
			margin = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= margin && margin > 0 {
			l = l[margin:]
		}
		out[i] = strings.TrimRight(l, " ")
	}
	return out
}

func indentOf(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}
