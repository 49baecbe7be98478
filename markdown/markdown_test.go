package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujumayas/dockstream"
	"github.com/sujumayas/dockstream/markdown"
)

// Tests assert on text structure, not ANSI escapes: lipgloss degrades
// styling based on the terminal profile, so escape sequences are not
// stable across environments.

func render(source string) string {
	return markdown.Render(source, 40, dockstream.DefaultTheme())
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", render(""))
}

func TestRender_Paragraph(t *testing.T) {
	t.Parallel()
	out := render("Hello world.")
	assert.Contains(t, out, "Hello world.")
}

func TestRender_WrapsLongParagraphs(t *testing.T) {
	t.Parallel()
	out := markdown.Render(strings.Repeat("word ", 30), 20, dockstream.DefaultTheme())
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 20)
	}
}

func TestRender_Heading(t *testing.T) {
	t.Parallel()
	out := render("# Title\n\nBody text.")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "Body text.")
}

func TestRender_FencedCodeBlock(t *testing.T) {
	t.Parallel()
	out := render("```go\nfunc main() {}\n```")
	assert.Contains(t, out, "go", "language tag is shown")
	assert.Contains(t, out, "│ func main() {}", "code lines carry a gutter")
}

func TestRender_CodeBlockNotReflowed(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("x", 60)
	out := markdown.Render("```\n"+long+"\n```", 20, dockstream.DefaultTheme())
	assert.Contains(t, out, long, "code lines keep their original width")
}

func TestRender_UnorderedList(t *testing.T) {
	t.Parallel()
	out := render("- first\n- second")
	assert.Contains(t, out, "- first")
	assert.Contains(t, out, "- second")
}

func TestRender_OrderedList(t *testing.T) {
	t.Parallel()
	out := render("1. first\n2. second")
	assert.Contains(t, out, "1. first")
	assert.Contains(t, out, "2. second")
}

func TestRender_NestedList(t *testing.T) {
	t.Parallel()
	out := render("- outer\n  - inner")
	require.Contains(t, out, "- outer")
	assert.Contains(t, out, "  - inner", "nested items are indented")
}

func TestRender_Link(t *testing.T) {
	t.Parallel()
	out := render("See [the docs](https://example.com).")
	assert.Contains(t, out, "the docs")
	assert.Contains(t, out, "(https://example.com)", "destination is shown after the label")
}

func TestRender_Blockquote(t *testing.T) {
	t.Parallel()
	out := render("> quoted text")
	assert.Contains(t, out, "quoted text", "unrecognized blocks keep their content")
}
