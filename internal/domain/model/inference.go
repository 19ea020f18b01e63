package model

// InferenceRequest is a single multimodal generation call.
type InferenceRequest struct {
	Prompt   string
	Image    []byte
	MIMEType string
}

// Usage as reported by the provider; zero when the provider does not report it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// InferenceResult holds the generated text of a successful call.
type InferenceResult struct {
	Text  string
	Model string
	Usage Usage
}
