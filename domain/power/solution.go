package power

// Solution is the continuous output of a family solver, before the
// dispatcher rounds sample sizes up and applies dropout inflation.
type Solution struct {
	N1       float64 `json:"n1"`
	N2       float64 `json:"n2,omitempty"`
	TotalN   float64 `json:"total_n"`
	Clusters int     `json:"clusters,omitempty"`

	Power  float64    `json:"power"`
	Effect EffectSize `json:"effect_size"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// AddDiagnostic appends a structured warning to the solution.
func (s *Solution) AddDiagnostic(code WarningCode, message string) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{Code: code, Message: message})
}
