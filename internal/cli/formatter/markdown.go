package formatter

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/wordwrap"
)

var (
	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// RenderMarkdown formats markdown for the terminal at the given width. When
// the renderer fails the source text is returned as is.
func RenderMarkdown(width int, input string) string {
	input = strings.TrimSpace(strings.ReplaceAll(input, "\r\n", "\n"))
	if input == "" {
		return ""
	}
	width = max(width, 20)

	renderer := markdownRenderer(width)
	if renderer == nil {
		return input
	}
	out, err := renderer.Render(input)
	if err != nil {
		return input
	}
	return strings.TrimRight(out, "\n")
}

func markdownRenderer(width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

// Wrap word-wraps text to width and indents every line by indent spaces.
// Paragraph breaks are kept; runs of whitespace inside a paragraph collapse.
func Wrap(text string, width, indent int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	width = max(width-indent, 10)
	prefix := strings.Repeat(" ", max(indent, 0))

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if p == "" {
			continue
		}
		lines := strings.Split(wordwrap.String(p, width), "\n")
		for i, line := range lines {
			lines[i] = prefix + line
		}
		paragraphs = append(paragraphs, strings.Join(lines, "\n"))
	}
	return strings.Join(paragraphs, "\n\n")
}
