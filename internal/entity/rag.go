package entity

import "time"

// Payload is the metadata stored with every point in the vector index
type Payload struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	ChunkID int    `json:"chunk_id"`
}

// Chunk is a contiguous piece of a document's extracted text
type Chunk struct {
	Text   string
	Source string
	Index  int
}

// Point is the unit of storage in the vector index
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredPoint is a point returned by a query or scroll. Scroll results carry a zero score
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload Payload
}

// Filter restricts query and scroll to points whose payload source equals Source
type Filter struct {
	Source string
}

// NewSourceFilter returns nil for an empty source so callers can pass it straight through
func NewSourceFilter(source string) *Filter {
	if source == "" {
		return nil
	}
	return &Filter{Source: source}
}

// Document is a registry record of one ingestion
type Document struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	ChunkCount int       `json:"chunk_count"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

type Route string

const (
	RouteRetrieve  Route = "retrieve"
	RouteSummarize Route = "summarize"
)

// QueryRequest is a free-text question with an optional source filter and chat history
type QueryRequest struct {
	Query   string
	Source  string
	History []string
}

// Answer is the result of the retrieve path
type Answer struct {
	Query       string    `json:"query"`
	FinalAnswer string    `json:"final_answer"`
	TopContexts []Payload `json:"top_contexts"`
}

// Summary is the result of the summarize path
type Summary struct {
	Source  string `json:"source"`
	Summary string `json:"summary"`
}

// QueryOutcome carries exactly one of Answer or Summary depending on Route
type QueryOutcome struct {
	Route   Route
	Answer  *Answer
	Summary *Summary
}

// ExportedFile is a rendered summary ready for download
type ExportedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)
