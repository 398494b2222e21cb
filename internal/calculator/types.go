package calculator

import "tip-calculator/internal/tipcalc"

// ValueRequest is the JSON body for field edits (bill, custom-tip, people).
// Value is the raw text of the field, exactly as typed.
type ValueRequest struct {
	Value string `json:"value"`
}

// InputsRequest batches the fields a page edited during one debounce window.
// Omitted fields keep their current text.
type InputsRequest = tipcalc.Edits

// PresetRequest selects a preset either by percentage or by position.
type PresetRequest struct {
	Percent *string `json:"percent,omitempty"`
	Index   *int    `json:"index,omitempty"`
}

// AdjustRequest is the JSON body for POST .../people/adjust.
type AdjustRequest struct {
	Delta int `json:"delta"`
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	SessionID string         `json:"session_id"`
	Result    tipcalc.Result `json:"result"`
	State     tipcalc.State  `json:"state"`
	Presets   []string       `json:"presets,omitempty"`
}

// QuoteRequest is the JSON body for POST /calculator/quote.
type QuoteRequest struct {
	Bill       string `json:"bill"`
	TipPercent string `json:"tip_percent"`
	People     string `json:"people"`
}

// QuoteResponse is the JSON response for POST /calculator/quote.
type QuoteResponse struct {
	Result tipcalc.Result `json:"result"`
}

// PresetsResponse lists the configured quick-select percentages.
type PresetsResponse struct {
	Presets  []string `json:"presets"`
	Currency string   `json:"currency"`
}
