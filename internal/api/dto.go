package api

// DecodeRequest configures a single beam-search decode. Zero-valued fields
// fall back to the provider's defaults.
type DecodeRequest struct {
	BeamSize int    `json:"beam_size,omitempty"`
	MaxSteps int    `json:"max_steps,omitempty"`
	MinSteps *int   `json:"min_steps,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// DecodeResponse is the stored result of a decode.
type DecodeResponse struct {
	ID         string  `json:"id"`
	Object     string  `json:"object"`
	CreatedAt  int64   `json:"created_at"`
	BeamSize   int     `json:"beam_size"`
	Mode       string  `json:"mode"`
	Tokens     []int   `json:"tokens"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Steps      int     `json:"steps"`
	DurationMS int64   `json:"duration_ms"`
}

// DecodeListResponse wraps the stored decodes.
type DecodeListResponse struct {
	Object string           `json:"object"`
	Data   []DecodeResponse `json:"data"`
}

// DeleteDecodeResponse acknowledges a deletion.
type DeleteDecodeResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// ResponseError is the error envelope returned by every failing endpoint.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
