package domain

// RetrievedChunk is one ranked text chunk from the retrieval service.
type RetrievedChunk struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}
