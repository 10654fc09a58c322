package model

// Kind carries the backend's two-level classification, e.g. {Organisation, StateMinister}.
type Kind struct {
	Major string `json:"major"`
	Minor string `json:"minor"`
}

type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"` // Encoded; use common.DecodeName before display
	Kind Kind   `json:"kind"`
}
