package tts

import "testing"

// TestStateTypeString tests the String() method for StateType.
func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state    StateType
		expected string
	}{
		{StateIdle, "idle"},
		{StateInitializing, "initializing"},
		{StateReady, "ready"},
		{StateSpeaking, "speaking"},
		{StateError, "error"},
		{StateDestroyed, "destroyed"},
		{StateType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.state.String(); result != tt.expected {
				t.Errorf("StateType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestStateHasEngine tests which states hold an engine.
func TestStateHasEngine(t *testing.T) {
	tests := []struct {
		state    StateType
		expected bool
	}{
		{StateIdle, false},
		{StateInitializing, true},
		{StateReady, true},
		{StateSpeaking, true},
		{StateError, false},
		{StateDestroyed, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if result := tt.state.HasEngine(); result != tt.expected {
				t.Errorf("StateType.HasEngine() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestStateMachineTransitions tests allowed and rejected transitions.
func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []StateType
		to    StateType
		allow bool
	}{
		{"idle to initializing", nil, StateInitializing, true},
		{"idle to speaking", nil, StateSpeaking, false},
		{"init to speaking", []StateType{StateInitializing}, StateSpeaking, true},
		{"init to error", []StateType{StateInitializing}, StateError, true},
		{"error retries", []StateType{StateInitializing, StateError}, StateInitializing, true},
		{"error to speaking", []StateType{StateInitializing, StateError}, StateSpeaking, false},
		{"speaking preempts", []StateType{StateInitializing, StateSpeaking}, StateSpeaking, true},
		{"ready to initializing", []StateType{StateInitializing, StateReady}, StateInitializing, false},
		{"destroyed is final", []StateType{StateDestroyed}, StateInitializing, false},
		{"destroy from ready", []StateType{StateInitializing, StateReady}, StateDestroyed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for _, s := range tt.path {
				if !sm.Transition(s) {
					t.Fatalf("setup transition to %v failed", s)
				}
			}

			before := sm.Current()
			if got := sm.Transition(tt.to); got != tt.allow {
				t.Fatalf("Transition(%v) from %v = %v, want %v", tt.to, before, got, tt.allow)
			}
			if !tt.allow && sm.Current() != before {
				t.Errorf("Rejected transition changed state to %v", sm.Current())
			}
		})
	}
}

// TestStateMachineOnEnter tests enter callbacks.
func TestStateMachineOnEnter(t *testing.T) {
	sm := NewStateMachine()

	entered := 0
	sm.OnEnter(StateInitializing, func() { entered++ })

	sm.Transition(StateInitializing)
	sm.Transition(StateError)
	sm.Transition(StateInitializing)

	if entered != 2 {
		t.Errorf("Expected OnEnter to be called twice, got %d", entered)
	}
}
