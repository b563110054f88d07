package analyzer

import (
	"time"

	"github.com/helmcode/text-analyzer/pkg/model"
)

// Phase is the lifecycle position of the current request.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the single current request slot. Result is set only when
// Succeeded and Err only when Failed.
type State struct {
	Phase      Phase
	Result     *model.Value
	Err        error
	Generation uint64
	// AnalysisType is the mode the displayed request was sent with.
	AnalysisType model.AnalysisType
	CompletedAt  time.Time
}

// Message is the user visible error text, or "".
func (s State) Message() string {
	if s.Phase != PhaseFailed || s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Event drives a transition in Reduce.
type Event interface {
	isEvent()
}

// Submitted starts request Generation.
type Submitted struct {
	Generation   uint64
	AnalysisType model.AnalysisType
}

// Rejected reports input that failed validation. No request is made.
type Rejected struct {
	Err error
}

// Completed delivers the decoded reply of request Generation.
type Completed struct {
	Generation uint64
	Result     *model.Value
	At         time.Time
}

// Errored reports that request Generation failed.
type Errored struct {
	Generation uint64
	Err        error
	At         time.Time
}

// Cleared returns to Idle and retires Generation-1 and older.
type Cleared struct {
	Generation uint64
}

func (Submitted) isEvent() {}
func (Rejected) isEvent()  {}
func (Completed) isEvent() {}
func (Errored) isEvent()   {}
func (Cleared) isEvent()   {}

// Reduce applies e to s. Completions for any generation other than the
// current one are stale and leave s unchanged.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case Submitted:
		// Any previous result or error is dropped before loading.
		return State{Phase: PhaseLoading, Generation: ev.Generation, AnalysisType: ev.AnalysisType}
	case Rejected:
		return State{Phase: PhaseFailed, Err: ev.Err, Generation: s.Generation}
	case Completed:
		if s.Phase != PhaseLoading || ev.Generation != s.Generation {
			return s
		}
		return State{
			Phase:        PhaseSucceeded,
			Result:       ev.Result,
			Generation:   s.Generation,
			AnalysisType: s.AnalysisType,
			CompletedAt:  ev.At,
		}
	case Errored:
		if s.Phase != PhaseLoading || ev.Generation != s.Generation {
			return s
		}
		return State{
			Phase:        PhaseFailed,
			Err:          ev.Err,
			Generation:   s.Generation,
			AnalysisType: s.AnalysisType,
			CompletedAt:  ev.At,
		}
	case Cleared:
		return State{Phase: PhaseIdle, Generation: ev.Generation}
	default:
		return s
	}
}
