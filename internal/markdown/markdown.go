// Package markdown renders todo descriptions for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	internalstrings "github.com/amonks/todopro/internal/strings"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown text for terminal output, wrapped to width and
// indented by indent spaces. Blank input renders as nil.
// If glamour fails the text is word-wrapped as plain text.
func Render(width, indentBy int, input []byte) []byte {
	value := normalize(string(input))
	if strings.TrimSpace(value) == "" {
		return nil
	}
	renderWidth := max(width-max(indentBy, 0), 1)

	rendered, err := markdownRenderer(renderWidth).Render(value)
	if err != nil {
		rendered = wordwrap.String(value, renderWidth)
	}
	return finish(rendered, indentBy)
}

// SafeRender is Render that falls back to the unrendered text if the renderer panics.
func SafeRender(width, indentBy int, input []byte) (out []byte) {
	defer func() {
		if recover() != nil {
			out = finish(normalize(string(input)), indentBy)
		}
	}()
	return Render(width, indentBy, input)
}

func finish(rendered string, indentBy int) []byte {
	rendered = internalstrings.TrimTrailingNewlines(rendered)
	if strings.TrimSpace(rendered) == "" {
		return nil
	}
	if indentBy > 0 {
		rendered = indent.String(rendered, uint(indentBy))
	}
	return []byte(rendered)
}

func normalize(value string) string {
	return internalstrings.TrimTrailingNewlines(internalstrings.NormalizeNewlines(value))
}

type plainRenderer struct{ width int }

func (p plainRenderer) Render(value string) (string, error) {
	return wordwrap.String(value, p.width), nil
}

func markdownRenderer(width int) renderer {
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
		return plainRenderer{width: width}
	}
	renderers[width] = created
	return created
}
