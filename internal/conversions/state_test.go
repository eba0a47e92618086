package conversions

import "testing"

func TestTransitionHappyPath(t *testing.T) {
	state := StateForm
	steps := []struct {
		event Event
		want  State
	}{
		{EventStart, StateExtracting},
		{EventExtracted, StateParsing},
		{EventParsed, StateGenerating},
		{EventGenerated, StateComplete},
		{EventReset, StateForm},
	}
	for _, step := range steps {
		next, err := Transition(state, step.event)
		if err != nil {
			t.Fatalf("Transition(%s, %s): %v", state, step.event, err)
		}
		if next != step.want {
			t.Fatalf("Transition(%s, %s) = %s, want %s", state, step.event, next, step.want)
		}
		state = next
	}
}

func TestTransitionFailOnlyFromProcessingStates(t *testing.T) {
	for _, state := range []State{StateExtracting, StateParsing, StateGenerating} {
		next, err := Transition(state, EventFail)
		if err != nil {
			t.Fatalf("Transition(%s, fail): %v", state, err)
		}
		if next != StateError {
			t.Fatalf("Transition(%s, fail) = %s, want %s", state, next, StateError)
		}
	}
	for _, state := range []State{StateForm, StateComplete, StateError} {
		if _, err := Transition(state, EventFail); err == nil {
			t.Fatalf("Transition(%s, fail) should be rejected", state)
		}
	}
}

func TestTransitionResetOnlyFromTerminalStates(t *testing.T) {
	for _, state := range []State{StateComplete, StateError} {
		next, err := Transition(state, EventReset)
		if err != nil {
			t.Fatalf("Transition(%s, reset): %v", state, err)
		}
		if next != StateForm {
			t.Fatalf("Transition(%s, reset) = %s, want %s", state, next, StateForm)
		}
	}
	for _, state := range []State{StateForm, StateExtracting, StateParsing, StateGenerating} {
		if _, err := Transition(state, EventReset); err == nil {
			t.Fatalf("Transition(%s, reset) should be rejected", state)
		}
	}
}

func TestTransitionRejectsSkippedStages(t *testing.T) {
	cases := []struct {
		state State
		event Event
	}{
		{StateForm, EventExtracted},
		{StateForm, EventGenerated},
		{StateExtracting, EventParsed},
		{StateParsing, EventGenerated},
		{StateComplete, EventStart},
	}
	for _, tc := range cases {
		next, err := Transition(tc.state, tc.event)
		if err == nil {
			t.Fatalf("Transition(%s, %s) should be rejected", tc.state, tc.event)
		}
		if next != tc.state {
			t.Fatalf("rejected transition changed state: %s -> %s", tc.state, next)
		}
	}
}
