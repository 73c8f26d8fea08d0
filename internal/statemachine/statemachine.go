// Package statemachine implements the kernel's State-Machine
// Interpreter (spec §4.4), generalized from the teacher's fixed
// six-state escalation ladder (internal/escalation/state_machine.go:
// Escalate/Decay under a per-PID mutex, IsTerminal, TimeInState) into a
// config-driven engine over an arbitrary set of named states.
package statemachine

import "fmt"

// Event is delivered to Send. Type selects the transition; Payload is
// passed through to guards and actions unexamined by the interpreter.
type Event struct {
	Type    string
	Payload any
}

// Guard is a pure predicate: same (context, event) in, same bool out,
// no side effects (spec §4.4: "guards must be pure").
type Guard func(ctx any, evt Event) bool

// Action may mutate ctx in place. Actions are effectful but must not
// panic (spec §3, StateMachineConfig invariant); any panic from an
// action propagates to the caller of Send uncaught (spec §4.4:
// "Exceptions from actions propagate to the caller").
type Action func(ctx any, evt Event)

// Transition describes what happens when an event matches: an optional
// guard gating the transition, a target state, and actions run after
// exit and before entry.
type Transition struct {
	Target  string
	Guard   Guard
	Actions []Action
}

// StateDef is one state's entry in the config: its event handlers and
// entry/exit action lists.
type StateDef struct {
	On      map[string]Transition
	OnEntry []Action
	OnExit  []Action
}

// Config maps state name to StateDef, shared by every instance built
// from it (spec §3: "referenced by many machine instances sharing one
// config"). Config is code, not data — only the Instance's
// current/context need persist (spec §4.4 "Persistence").
type Config map[string]StateDef

// Instance is one running state machine bound to a Config.
type Instance struct {
	Current string
	Context any
	config  Config
	initial string
}

// New creates an Instance in initialState. Panics if initialState is
// not a key of config — this is a programmer error caught at
// construction, analogous to spec §3's invariant "state name always
// in config keys".
func New(config Config, initialState string, ctx any) *Instance {
	if _, ok := config[initialState]; !ok {
		panic(fmt.Sprintf("statemachine: initial state %q not in config", initialState))
	}
	return &Instance{
		Current: initialState,
		Context: ctx,
		config:  config,
		initial: initialState,
	}
}

// Restore rebuilds an Instance from persisted current/context without
// re-validating the initial state (used when reloading from
// DurableRoot; the persisted current state is trusted to have been
// valid when it was written).
func Restore(config Config, current string, ctx any) *Instance {
	return &Instance{Current: current, Context: ctx, config: config}
}

// Send evaluates one event against the instance's current state,
// implementing spec §4.4's six-step algorithm exactly:
//
//  1. Look up current state's config; if none or no transition for
//     event.Type, ignore silently.
//  2. Evaluate transition.Guard(context, event) if present; if false,
//     ignore (state unchanged, zero effects — spec §8 invariant 5).
//  3. Run current state's on_exit actions in order.
//  4. Run transition.Actions in order.
//  5. Set current_state := transition.Target.
//  6. Run new state's on_entry actions in order.
func (m *Instance) Send(evt Event) {
	def, ok := m.config[m.Current]
	if !ok {
		return
	}
	tr, ok := def.On[evt.Type]
	if !ok {
		return
	}
	if tr.Guard != nil && !tr.Guard(m.Context, evt) {
		return
	}

	for _, a := range def.OnExit {
		a(m.Context, evt)
	}
	for _, a := range tr.Actions {
		a(m.Context, evt)
	}

	m.Current = tr.Target

	if next, ok := m.config[tr.Target]; ok {
		for _, a := range next.OnEntry {
			a(m.Context, evt)
		}
	}
}
