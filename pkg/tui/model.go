// Package tui is the interactive terminal form: pick an analysis mode, type
// or paste text, submit it to the webhook and browse the result tables.
//
// Request lifecycle state lives in analyzer.Controller. The model only maps
// key presses to controller calls and runs the network call as a tea.Cmd;
// the completion message carries the request ticket so that a response
// arriving after Clear or a newer submission is dropped by the controller.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/helmcode/text-analyzer/pkg/analyzer"
	"github.com/helmcode/text-analyzer/pkg/formatter"
	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/helmcode/text-analyzer/pkg/render"
	"go.uber.org/zap"
)

// analysisDoneMsg is delivered when a request started from the form returns.
type analysisDoneMsg struct {
	ticket analyzer.Ticket
	result *model.Value
	err    error
}

// Model is the bubbletea model of the form.
type Model struct {
	ctrl     *analyzer.Controller
	logger   *zap.Logger
	input    textarea.Model
	spinner  spinner.Model
	result   viewport.Model
	maxDepth int
	width    int
	height   int

	// parent bounds every request; it ends with the program
	parent context.Context
	// cancel aborts the request currently in flight, if any
	cancel context.CancelFunc
}

// Options configures New.
type Options struct {
	MaxDepth int
	Logger   *zap.Logger
	// Context is the parent of every request context. Defaults to
	// context.Background().
	Context context.Context
}

func New(ctrl *analyzer.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type or paste your text here for analysis..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(8)
	ta.SetWidth(76)
	ta.SetValue(ctrl.Text())
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = render.DefaultMaxDepth
	}

	return Model{
		ctrl:     ctrl,
		logger:   logger,
		input:    ta,
		spinner:  sp,
		result:   viewport.New(80, 12),
		maxDepth: maxDepth,
		width:    80,
		height:   24,
		parent:   parent,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case analysisDoneMsg:
		if m.ctrl.Finish(msg.ticket, msg.result, msg.err) {
			m.abort()
			m.input.Focus()
			m.refreshResult()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.abort()
		return m, tea.Quit

	case "tab":
		m.ctrl.SetAnalysisType(m.ctrl.AnalysisType().Toggle())
		return m, nil

	case "ctrl+s":
		return m.submit()

	case "ctrl+l":
		m.abort()
		m.ctrl.Clear()
		m.input.Reset()
		m.input.Focus()
		m.result.SetContent("")
		return m, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return m, cmd
	}

	// Input is disabled while a request is in flight
	if m.ctrl.Busy() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetText(m.input.Value())
	return m, cmd
}

// submit starts a request unless one is already in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.ctrl.Busy() {
		return m, nil
	}

	m.ctrl.SetText(m.input.Value())
	ticket, err := m.ctrl.Begin()
	if err != nil {
		m.logger.Debug("Submission rejected", zap.Error(err))
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.parent)
	m.cancel = cancel
	m.input.Blur()
	m.result.SetContent("")

	return m, tea.Batch(m.spinner.Tick, m.runAnalysis(ctx, ticket))
}

// runAnalysis performs the call off the UI goroutine.
func (m Model) runAnalysis(ctx context.Context, ticket analyzer.Ticket) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		result, err := ctrl.Run(ctx, ticket)
		return analysisDoneMsg{ticket: ticket, result: result, err: err}
	}
}

func (m *Model) abort() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	m.input.SetWidth(inner)

	m.result.Width = inner
	m.result.Height = height - formHeight
	if m.result.Height < 5 {
		m.result.Height = 5
	}
	m.refreshResult()
}

// refreshResult redraws the result tables for the current state.
func (m *Model) refreshResult() {
	st := m.ctrl.State()
	if st.Phase != analyzer.PhaseSucceeded {
		m.result.SetContent("")
		return
	}
	opts := render.DefaultOptions()
	opts.MaxDepth = m.maxDepth
	m.result.SetContent(formatter.RenderBlock(render.Render(st.Result, opts), m.result.Width))
	m.result.GotoTop()
}
