package domain

// AutocompleteState autocomplete widget state
type AutocompleteState string

const (
	// StateIdle nothing typed or input cleared
	StateIdle AutocompleteState = "idle"
	// StateDebouncing waiting for the user to stop typing
	StateDebouncing AutocompleteState = "debouncing"
	// StateLoading provider call in flight
	StateLoading AutocompleteState = "loading"
	// StateSuccess suggestions ready
	StateSuccess AutocompleteState = "success"
	// StateError provider failed; only a provider reload leaves this state
	StateError AutocompleteState = "error"
)

// AutocompleteUpdate state change pushed to the client
type AutocompleteUpdate struct {
	State       AutocompleteState `json:"state"`
	Query       string            `json:"query"`
	Suggestions []Suggestion      `json:"suggestions,omitempty"`
	Error       string            `json:"error,omitempty"`
}
