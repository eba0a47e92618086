package conversions

import "fmt"

// State is the explicit pipeline state of one conversion attempt.
type State string

const (
	StateForm       State = "form"
	StateExtracting State = "extracting"
	StateParsing    State = "parsing"
	StateGenerating State = "generating"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// Event drives the pipeline state machine.
type Event string

const (
	EventStart     Event = "start"
	EventExtracted Event = "extracted"
	EventParsed    Event = "parsed"
	EventGenerated Event = "generated"
	EventFail      Event = "fail"
	EventReset     Event = "reset"
)

// Transition is the pure transition function of the pipeline. Complete and
// Error are terminal for an attempt; EventReset starts a fresh attempt from
// Form. Any other combination is a programming error.
func Transition(state State, event Event) (State, error) {
	switch event {
	case EventStart:
		if state == StateForm {
			return StateExtracting, nil
		}
	case EventExtracted:
		if state == StateExtracting {
			return StateParsing, nil
		}
	case EventParsed:
		if state == StateParsing {
			return StateGenerating, nil
		}
	case EventGenerated:
		if state == StateGenerating {
			return StateComplete, nil
		}
	case EventFail:
		switch state {
		case StateExtracting, StateParsing, StateGenerating:
			return StateError, nil
		}
	case EventReset:
		switch state {
		case StateComplete, StateError:
			return StateForm, nil
		}
	}
	return state, fmt.Errorf("invalid transition: %s on %s", event, state)
}
