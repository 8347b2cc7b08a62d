package domain

import "encoding/json"

// Action geosearch websocket action
type Action string

const (
	// ActionInput user typed into the location box
	ActionInput Action = "input"
	// ActionSelect user picked a suggestion; resolve and search
	ActionSelect Action = "select"
	// ActionRadius user moved the radius slider
	ActionRadius Action = "radius"
	// ActionLocate device location (or its failure) reported by the client
	ActionLocate Action = "locate"
	// ActionRetry reload the provider after an error
	ActionRetry Action = "retry"

	// PushAutocomplete server push: autocomplete state
	PushAutocomplete Action = "autocomplete"
	// PushResults server push: nearby search results
	PushResults Action = "results"
)

// WSRequest client message
type WSRequest struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse server message
type WSResponse struct {
	Action  Action      `json:"action"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// InputPayload ActionInput
type InputPayload struct {
	Query string `json:"query"`
}

// SelectPayload ActionSelect
type SelectPayload struct {
	PlaceID string `json:"place_id"`
}

// RadiusPayload ActionRadius
type RadiusPayload struct {
	Index int `json:"index"`
}

// LocatePayload ActionLocate; Denied means permission denied or timeout
type LocatePayload struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Denied bool    `json:"denied"`
}
