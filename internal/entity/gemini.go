package entity

// Wire types of the Gemini generative language REST API

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiEmbedContentRequest struct {
	Model   string        `json:"model"`
	Content GeminiContent `json:"content"`
}

type GeminiEmbedding struct {
	Values []float32 `json:"values"`
}

type GeminiEmbedContentResponse struct {
	Embedding GeminiEmbedding `json:"embedding"`
}

type GeminiBatchEmbedRequest struct {
	Requests []GeminiEmbedContentRequest `json:"requests"`
}

type GeminiBatchEmbedResponse struct {
	Embeddings []GeminiEmbedding `json:"embeddings"`
}

type GeminiGenerateRequest struct {
	Contents []GeminiContent `json:"contents"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type GeminiGenerateResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}
