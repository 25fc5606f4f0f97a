package entity

// Wire types of the Qdrant REST API

type QdrantVectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type QdrantCreateCollectionRequest struct {
	Vectors QdrantVectorParams `json:"vectors"`
}

type QdrantCreateIndexRequest struct {
	FieldName   string `json:"field_name"`
	FieldSchema string `json:"field_schema"`
}

type QdrantMatch struct {
	Value string `json:"value"`
}

type QdrantFieldCondition struct {
	Key   string      `json:"key"`
	Match QdrantMatch `json:"match"`
}

type QdrantFilter struct {
	Must []QdrantFieldCondition `json:"must"`
}

type QdrantPoint struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

type QdrantUpsertRequest struct {
	Points []QdrantPoint `json:"points"`
}

type QdrantQueryRequest struct {
	Query       []float32     `json:"query"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
	Filter      *QdrantFilter `json:"filter,omitempty"`
}

type QdrantScrollRequest struct {
	Filter      *QdrantFilter `json:"filter,omitempty"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
	WithVector  bool          `json:"with_vector"`
}

type QdrantScoredPoint struct {
	ID      any     `json:"id"`
	Score   float64 `json:"score"`
	Payload Payload `json:"payload"`
}

type QdrantQueryResponse struct {
	Result struct {
		Points []QdrantScoredPoint `json:"points"`
	} `json:"result"`
}

type QdrantScrollResponse struct {
	Result struct {
		Points         []QdrantScoredPoint `json:"points"`
		NextPageOffset any                 `json:"next_page_offset"`
	} `json:"result"`
}

type QdrantExistsResponse struct {
	Result struct {
		Exists bool `json:"exists"`
	} `json:"result"`
}

type QdrantCollectionInfoResponse struct {
	Result struct {
		PayloadSchema map[string]any `json:"payload_schema"`
	} `json:"result"`
}
