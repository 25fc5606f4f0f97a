package entity

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Query   string   `json:"query"`
	History []string `json:"history"`
	Source  *string  `json:"source,omitempty"`
}

// SummaryRequest is the body of POST /summary
type SummaryRequest struct {
	Source string `json:"source"`
}

// ExportSummaryRequest is the body of POST /summary/export
type ExportSummaryRequest struct {
	Source string       `json:"source"`
	Format ResultFormat `json:"format"`
}

type UploadResponse struct {
	Status      string `json:"status"`
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ListDocumentsResponse struct {
	Documents []*Document `json:"documents"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
