package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/helmcode/text-analyzer/pkg/analyzer"
	"github.com/helmcode/text-analyzer/pkg/formatter"
	"github.com/helmcode/text-analyzer/pkg/model"
)

// formHeight is the number of lines taken by everything but the result.
const formHeight = 24

var (
	indigo = lipgloss.Color("#4F46E5")
	muted  = lipgloss.Color("#6B7280")
	red    = lipgloss.Color("#DC2626")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(indigo)
	subtitleStyle = lipgloss.NewStyle().Foreground(muted)
	labelStyle    = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(muted)
	spinnerStyle  = lipgloss.NewStyle().Foreground(indigo)

	modeStyle         = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#D1D5DB"))
	modeSelectedStyle = modeStyle.Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(indigo).BorderForeground(indigo)

	buttonStyle         = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("#FFFFFF")).Background(indigo)
	buttonDisabledStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("#FFFFFF")).Background(muted)
	secondaryStyle      = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("#E5E7EB"))

	errorStyle  = lipgloss.NewStyle().Foreground(red).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(red).Padding(0, 1)
	resultStyle = lipgloss.NewStyle().Bold(true).Foreground(indigo)
)

func (m Model) View() string {
	var b strings.Builder
	st := m.ctrl.State()

	b.WriteString(titleStyle.Render("AI Text Analyzer"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Summarize text or analyze its sentiment through your automation webhook"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Analysis Type"))
	b.WriteString("\n")
	b.WriteString(m.modeSelector())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Enter Text"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(characterCount(m.input.Value())))
	b.WriteString("\n\n")

	b.WriteString(m.buttons(st))
	b.WriteString("\n")

	if msg := st.Message(); msg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}

	if st.Phase == analyzer.PhaseSucceeded {
		b.WriteString("\n")
		b.WriteString(resultStyle.Render(m.ctrl.AnalysisType().Title()))
		b.WriteString("\n")
		b.WriteString(m.result.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(formatter.CompletedLine(st.CompletedAt)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("tab: switch type • ctrl+s: analyze • ctrl+l: clear • pgup/pgdown: scroll • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) modeSelector() string {
	current := m.ctrl.AnalysisType()
	opts := make([]string, 0, len(model.AnalysisTypes()))
	for _, t := range model.AnalysisTypes() {
		style := modeStyle
		if t == current {
			style = modeSelectedStyle
		}
		opts = append(opts, style.Render(t.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, opts...)
}

func (m Model) buttons(st analyzer.State) string {
	var analyze string
	switch {
	case st.Phase == analyzer.PhaseLoading:
		analyze = buttonDisabledStyle.Render(m.spinner.View() + " Analyzing...")
	case strings.TrimSpace(m.input.Value()) == "":
		analyze = buttonDisabledStyle.Render("Analyze Text (ctrl+s)")
	default:
		analyze = buttonStyle.Render("Analyze Text (ctrl+s)")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, analyze, " ", secondaryStyle.Render("Clear (ctrl+l)"))
}

func characterCount(text string) string {
	n := utf8.RuneCountInString(text)
	if n == 1 {
		return "1 character"
	}
	return fmt.Sprintf("%d characters", n)
}
