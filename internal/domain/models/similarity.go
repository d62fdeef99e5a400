package models

// Relevance buckets a similarity score for human consumption.
type Relevance string

const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// RelevanceFromSimilarity buckets a [0,1] similarity score.
func RelevanceFromSimilarity(sim float64) Relevance {
	switch {
	case sim > 0.8:
		return RelevanceHigh
	case sim > 0.6:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// SimilarityMatch is one nearest-neighbour hit from the vector index.
type SimilarityMatch struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Similarity  float64           `json:"similarity"`
	Relevance   Relevance         `json:"relevance"`
}

// LibraryRecord is a curated corpus entry for seeding the vector index.
type LibraryRecord struct {
	ID          string
	Description string
	Metadata    map[string]string
}
