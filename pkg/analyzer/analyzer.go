package analyzer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/helmcode/text-analyzer/pkg/model"
	"go.uber.org/zap"
)

// Client performs the outbound analysis call.
type Client interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.Value, error)
}

// Ticket identifies one issued request. Its outcome is applied only if no
// newer submission or clear has happened since.
type Ticket struct {
	Generation uint64
	Request    model.AnalysisRequest
}

// Controller owns the form input and the request lifecycle state.
type Controller struct {
	mu           sync.Mutex
	client       Client
	logger       *zap.Logger
	now          func() time.Time
	text         string
	analysisType model.AnalysisType
	state        State
	generation   uint64
	cancel       context.CancelFunc
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithAnalysisType sets the initially selected mode.
func WithAnalysisType(t model.AnalysisType) Option {
	return func(c *Controller) { c.analysisType = t }
}

func New(client Client, opts ...Option) *Controller {
	c := &Controller{
		client:       client,
		logger:       zap.NewNop(),
		now:          time.Now,
		analysisType: model.AnalysisSummary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetText replaces the input text.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

// Text returns the input text.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// SetAnalysisType selects the mode for the next submission. A request already
// in flight keeps the mode it was sent with.
func (c *Controller) SetAnalysisType(t model.AnalysisType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analysisType = t
}

// AnalysisType returns the selected mode.
func (c *Controller) AnalysisType() model.AnalysisType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysisType
}

// State returns a snapshot of the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a request is in flight. Front ends use it to disable
// the submit trigger; the controller itself does not refuse a new Begin.
func (c *Controller) Busy() bool {
	return c.State().Phase == PhaseLoading
}

// Begin validates the current input and moves to Loading. On invalid input
// it moves to Failed and returns the *model.ValidationError.
func (c *Controller) Begin() (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := model.AnalysisRequest{Text: c.text, AnalysisType: c.analysisType}
	if err := req.Validate(); err != nil {
		c.state = Reduce(c.state, Rejected{Err: err})
		c.logger.Debug("Rejected submission", zap.Error(err))
		return Ticket{}, err
	}

	c.generation++
	c.state = Reduce(c.state, Submitted{Generation: c.generation, AnalysisType: req.AnalysisType})
	c.logger.Debug("Submission accepted",
		zap.Uint64("generation", c.generation),
		zap.String("analysis_type", string(req.AnalysisType)))

	return Ticket{Generation: c.generation, Request: req}, nil
}

// Finish applies the outcome of t. It returns false if t was superseded by a
// later submission or a clear, in which case the state is untouched.
func (c *Controller) Finish(t Ticket, result *model.Value, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Generation != c.generation || c.state.Phase != PhaseLoading {
		c.logger.Debug("Discarding stale response",
			zap.Uint64("generation", t.Generation),
			zap.Uint64("current", c.generation))
		return false
	}

	if err == nil && result == nil {
		err = &model.ParseError{Err: errors.New("empty result")}
	}

	at := c.now()
	if err != nil {
		c.state = Reduce(c.state, Errored{Generation: t.Generation, Err: err, At: at})
	} else {
		c.state = Reduce(c.state, Completed{Generation: t.Generation, Result: result, At: at})
	}
	c.cancel = nil
	return true
}

// Run performs the network call for t. It blocks and does not touch state.
func (c *Controller) Run(ctx context.Context, t Ticket) (*model.Value, error) {
	return c.client.Analyze(ctx, t.Request)
}

// Submit validates, sends exactly one request and applies its outcome. It
// returns the resulting state, which may already have moved on if Clear or
// another Submit ran concurrently.
func (c *Controller) Submit(ctx context.Context) State {
	ticket, err := c.Begin()
	if err != nil {
		return c.State()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	result, err := c.Run(ctx, ticket)
	c.Finish(ticket, result, err)
	return c.State()
}

// Clear resets the input and state to Idle. A response for any earlier
// request is ignored when it arrives, and a request started by Submit is
// cancelled.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.text = ""
	c.generation++
	c.state = Reduce(c.state, Cleared{Generation: c.generation})
}
