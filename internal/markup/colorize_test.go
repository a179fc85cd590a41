package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for markup rendering:
// - Inline collapses whitespace and bracket padding, keeps string literals intact
// - Inline drops comments in multi-line expressions
// - HTML wraps in <code>, links names, escapes text, leaves keywords unlinked
// - Block keeps short values unchanged
// - Block wraps long lines with the wrap marker
// - Block truncates to MaxLines with an ellipsis
// - Block dedents continuation lines
// - Zero limits disable wrapping and truncation
// - StripTags removes all tags, StripCode only the code wrapper
// - ReturnName extracts the first identifier, falls back to "None"

func TestInline(t *testing.T) {
	t.Parallel()

	c := Colorizer{}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "int", "int"},
		{"subscript", "Dict[str, int]", "Dict[str, int]"},
		{"multiline", "Dict[\n    str,\n    int\n]", "Dict[str, int]"},
		{"comment", "Tuple[  # key\n    int ]", "Tuple[int]"},
		{"string keeps spaces", `Literal["a   b"]`, `Literal["a   b"]`},
		{"prefixed string", `f"x {y}"`, `f"x {y}"`},
		{"call", "field( default = 1 )", "field(default = 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Inline(tt.in).Text())
		})
	}
}

func TestInline_HTML(t *testing.T) {
	t.Parallel()

	c := Colorizer{}
	assert.Equal(t, `<code><a href="#int">int</a></code>`, c.Inline("int").HTML())
	assert.Equal(t,
		`<code><a href="#typing.Optional">typing.Optional</a>[<a href="#User">User</a>]</code>`,
		c.Inline("typing.Optional[User]").HTML())
	assert.Equal(t, `<code>None</code>`, c.Inline("None").HTML())
	assert.Equal(t, `<code>&#34;&lt;b&gt;&#34;</code>`, c.Inline(`"<b>"`).HTML())
}

func TestBlock_Short(t *testing.T) {
	t.Parallel()

	c := Colorizer{LineLen: 80, MaxLines: 7}
	assert.Equal(t, "42", c.Block("42").Text())
	assert.Equal(t, "{'a': 1}", c.Block("{'a': 1}").Text())
}

func TestBlock_Wraps(t *testing.T) {
	t.Parallel()

	c := Colorizer{LineLen: 10, MaxLines: 0}
	got := c.Block("'abcdefghijklmnopqrstuvwxy'").Text()
	assert.Equal(t, "'abcdefghi"+WrapMarker+"\njklmnopqrs"+WrapMarker+"\ntuvwxy'", got)
}

func TestBlock_Truncates(t *testing.T) {
	t.Parallel()

	c := Colorizer{LineLen: 0, MaxLines: 2}
	got := c.Block("[\n    1,\n    2,\n    3,\n]").Text()
	assert.Equal(t, "[\n    1,...", got)
}

func TestBlock_TruncatesWrappedLine(t *testing.T) {
	t.Parallel()

	c := Colorizer{LineLen: 4, MaxLines: 2}
	got := c.Block("'abcdefghijkl'").Text()
	assert.Equal(t, "'abc"+WrapMarker+"\ndefg...", got)
}

func TestBlock_Dedents(t *testing.T) {
	t.Parallel()

	c := Colorizer{LineLen: 80, MaxLines: 7}
	got := c.Block("{\n        'a': 1,\n    }").Text()
	assert.Equal(t, "{\n    'a': 1,\n}", got)
}

func TestBlock_NoLimits(t *testing.T) {
	t.Parallel()

	c := Colorizer{}
	src := "[" + strings.Repeat("1, ", 100) + "]"
	got := c.Block(src).Text()
	assert.NotContains(t, got, WrapMarker)
	assert.NotContains(t, got, Ellipsis)
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Optional[User]", StripTags(`<a href="#Optional">Optional</a>[<a href="#User">User</a>]`))
	assert.Equal(t, "int", StripTags("<code>int</code>"))
	assert.Equal(t, "no tags", StripTags("no tags"))
	assert.Equal(t, `<a href="#x">x</a>`, StripCode(`<code><a href="#x">x</a></code>`))
}

func TestReturnName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain code", "<code>int</code>", "int"},
		{"linked", `<code><a href="#User">User</a></code>`, "User"},
		{"generic takes first", `<code><a href="#Optional">Optional</a>[<a href="#User">User</a>]</code>`, "Optional"},
		{"dotted takes first part", `<code><a href="#typing.List">typing.List</a></code>`, "typing"},
		{"none annotation", "<code>None</code>", "None"},
		{"no identifier", "<code>...</code>", NoReturnName},
		{"number only", "<code>42</code>", NoReturnName},
		{"empty", "", NoReturnName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReturnName(tt.in))
		})
	}
}

func TestReturnName_FromColorizer(t *testing.T) {
	t.Parallel()

	c := Colorizer{}
	assert.Equal(t, "List", ReturnName(c.Inline("List[int]").HTML()))
	assert.Equal(t, NoReturnName, ReturnName(c.Inline("...").HTML()))
}
