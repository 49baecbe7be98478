package dockstream

// Usage tracks token consumption for one exchange as reported by the
// gateway's done chunk. TotalTokens is carried verbatim rather than
// derived; the gateway may bill pre-processing tokens that appear in
// neither input nor output.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}
