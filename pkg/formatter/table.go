package formatter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/helmcode/text-analyzer/pkg/render"
)

var (
	indigo      = lipgloss.Color("#4F46E5")
	indigoLight = lipgloss.Color("#EEF2FF")
	gray        = lipgloss.Color("#D1D5DB")

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(indigo).Padding(0, 1)
	keyStyle       = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	stripeStyle    = lipgloss.NewStyle().Background(indigoLight)
	highlightStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(indigo).Padding(0, 1)
)

// minCellWidth keeps deeply nested scalars readable.
const minCellWidth = 20

// RenderBlock draws a render.Block tree as nested terminal tables. width is
// the target line width used to wrap long scalar text.
func RenderBlock(b *render.Block, width int) string {
	if width <= 0 {
		width = 80
	}
	return drawBlock(b, width, 0)
}

func drawBlock(b *render.Block, width, parentIndent int) string {
	if b == nil {
		return ""
	}
	switch b.Kind {
	case render.BlockTable:
		return drawTable(b, width, parentIndent)
	case render.BlockList:
		return drawList(b, width, parentIndent)
	default:
		text := wrapText(b.Text, cellWidth(width, b.Depth), "")
		if b.Highlight {
			return highlightStyle.Render(text)
		}
		return text
	}
}

func drawTable(b *render.Block, width, parentIndent int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(gray)).
		Headers(render.HeaderProperty, render.HeaderValue)

	striped := make(map[int]bool, len(b.Rows))
	for _, row := range b.Rows {
		t.Row(row.Key, drawBlock(row.Value, width, b.Indent))
		striped[row.Index] = row.Striped
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		style := cellStyle
		if col == 0 {
			style = keyStyle
		}
		if striped[row] {
			style = style.Inherit(stripeStyle)
		}
		return style
	})

	out := t.String()
	if indent := b.Indent - parentIndent; indent > 0 {
		out = lipgloss.NewStyle().MarginLeft(indent).Render(out)
	}
	return out
}

func drawList(b *render.Block, width, parentIndent int) string {
	lines := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		lines = append(lines, drawBlock(item, width, parentIndent))
	}
	return strings.Join(lines, "\n")
}

func cellWidth(width, depth int) int {
	w := width - 24 - depth*8
	if w < minCellWidth {
		w = minCellWidth
	}
	return w
}

// wrapText breaks text into lines of at most width runes, word by word, with
// indent prepended to every line. Existing line breaks, leading whitespace and
// runs of spaces between words are kept; the gap at a wrap point is dropped.
func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := wordPattern.FindAllStringIndex(line, -1)
		if len(words) == 0 {
			result.WriteString(line + "\n")
			continue
		}

		currentLine := indent + line[:words[0][0]]
		fresh := true
		prevEnd := words[0][0]
		for _, w := range words {
			word := line[w[0]:w[1]]
			gap := line[prevEnd:w[0]]
			prevEnd = w[1]

			switch {
			case fresh:
				currentLine += word
				fresh = false
			case runeLen(currentLine)+runeLen(gap)+runeLen(word) > width:
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			default:
				currentLine += gap + word
			}
		}
		result.WriteString(currentLine + "\n")
	}

	return strings.TrimSuffix(result.String(), "\n")
}

var wordPattern = regexp.MustCompile(`\S+`)

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
