// Package session models one improvement run over a paper: the round
// counter, the paper file currently on disk, and a state machine that
// keeps the review/plan/revise phases in order.
package session

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Session states.
const (
	StateReviewing        = "reviewing"
	StatePlanning         = "planning"
	StateRevising         = "revising"
	StateAwaitingApproval = "awaiting_approval"
	StateCompleted        = "completed"
)

// Session events.
const (
	EventReviewsReady = "reviews_ready"
	EventPlanReady    = "plan_ready"    // automatic: the plan goes straight to revision
	EventPlanProposed = "plan_proposed" // interactive: the plan awaits approval
	EventApprove      = "approve"
	EventReject       = "reject"
	EventQuit         = "quit"
	EventRevised      = "revised" // another round follows
	EventFinish       = "finish"
)

// Mode selects how a session advances past a generated plan.
type Mode string

const (
	ModeAutomatic   Mode = "automatic"
	ModeInteractive Mode = "interactive"
)

type sessionContext struct {
	Mode Mode
}

// Lifecycle enforces the phase order of an improvement session. Automatic
// sessions move review -> plan -> revise each round; interactive sessions
// insert an approval gate after planning.
type Lifecycle struct {
	interpreter *statekit.Interpreter[sessionContext]
}

func NewLifecycle(mode Mode) (*Lifecycle, error) {
	builder := statekit.NewMachine[sessionContext]("improvement-session").
		WithInitial(StateReviewing).
		WithContext(sessionContext{Mode: mode}).
		WithGuard("automatic", func(ctx sessionContext, e statekit.Event) bool {
			return ctx.Mode == ModeAutomatic
		}).
		WithGuard("interactive", func(ctx sessionContext, e statekit.Event) bool {
			return ctx.Mode == ModeInteractive
		})

	builder.State(StateReviewing).
		On(EventReviewsReady).Target(StatePlanning).
		Done()

	builder.State(StatePlanning).
		On(EventPlanReady).Target(StateRevising).Guard("automatic").
		On(EventPlanProposed).Target(StateAwaitingApproval).Guard("interactive").
		Done()

	builder.State(StateAwaitingApproval).
		On(EventApprove).Target(StateRevising).
		On(EventReject).Target(StatePlanning).
		On(EventQuit).Target(StateCompleted).
		Done()

	builder.State(StateRevising).
		On(EventRevised).Target(StateReviewing).
		On(EventFinish).Target(StateCompleted).
		Done()

	builder.State(StateCompleted).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build session state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Lifecycle{interpreter: interpreter}, nil
}

// Advance fires an event and fails when the event is not valid for the
// current state. An invalid transition is a bug in the orchestration, not
// a user condition.
func (l *Lifecycle) Advance(event string) error {
	before := l.Current()
	l.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := l.Current()

	if before != after {
		return nil
	}
	return fmt.Errorf("session event %q is not valid in state %q", event, before)
}

func (l *Lifecycle) Current() string {
	return string(l.interpreter.State().Value)
}

// Outcome summarizes a finished improvement session.
type Outcome struct {
	SessionDir string
	FinalPath  string
	Rounds     int
	Quit       bool
}
