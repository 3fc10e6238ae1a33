package tts

// StateType represents the lifecycle state of a speech session.
type StateType int

const (
	// StateIdle indicates no engine has been created yet.
	StateIdle StateType = iota
	// StateInitializing indicates the engine is starting up.
	StateInitializing
	// StateReady indicates the engine is ready and nothing is being spoken.
	StateReady
	// StateSpeaking indicates an utterance is in flight.
	StateSpeaking
	// StateError indicates the engine failed to initialize.
	StateError
	// StateDestroyed indicates the session released its engine for good.
	StateDestroyed
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSpeaking:
		return "speaking"
	case StateError:
		return "error"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// HasEngine returns true if an engine handle exists in this state.
func (s StateType) HasEngine() bool {
	return s == StateInitializing || s == StateReady || s == StateSpeaking
}

// StateMachine guards state transitions of a session. It is not safe for
// concurrent use; the session serializes access.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
}

// NewStateMachine creates a new state machine with valid transitions.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:         {StateInitializing, StateDestroyed},
			StateInitializing: {StateReady, StateSpeaking, StateError, StateDestroyed},
			StateReady:        {StateSpeaking, StateDestroyed},
			StateSpeaking:     {StateSpeaking, StateReady, StateDestroyed},
			StateError:        {StateInitializing, StateDestroyed},
			StateDestroyed:    {},
		},
		onEnter: make(map[StateType]func()),
	}
}

// Transition attempts to transition to the specified state.
func (sm *StateMachine) Transition(to StateType) bool {
	if !sm.CanTransition(to) {
		return false
	}

	sm.current = to

	if enterFn, ok := sm.onEnter[to]; ok && enterFn != nil {
		enterFn()
	}

	return true
}

// CanTransition reports whether moving to the state is allowed.
func (sm *StateMachine) CanTransition(to StateType) bool {
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			return true
		}
	}
	return false
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.onEnter[state] = fn
}
