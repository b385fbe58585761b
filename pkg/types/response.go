package types

// SuccessEnvelope is the uniform success shape: {"success": true, "data": ...}.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope is the uniform failure shape. Field and Hint are populated
// for validation failures where a specific input is at fault.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Details any    `json:"details,omitempty"`
}
