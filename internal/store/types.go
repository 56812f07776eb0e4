package store

// Metadata keys written with every ingested chunk.
const (
	MetaSourceURL  = "source_url"
	MetaSourceType = "source_type"
	MetaTitle      = "title"
	MetaChunk      = "chunk"
)

// Document is one embedded chunk destined for a collection.
type Document struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
	Content  string
}

type VectorResult struct {
	ID       string
	Score    float32
	Metadata map[string]string
	Content  string
}
