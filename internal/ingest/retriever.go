package ingest

import (
	"context"
	"strings"

	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/store"
)

// Hit is one retrieved chunk.
type Hit struct {
	Content    string  `json:"content"`
	SourceURL  string  `json:"source_url"`
	SourceType string  `json:"source_type"`
	Title      string  `json:"title"`
	Score      float32 `json:"score"`
}

// Retriever answers similarity queries against ingested content.
type Retriever struct {
	svc  *Service
	topK int
}

func NewRetriever(svc *Service, topK int) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{svc: svc, topK: topK}
}

// Search embeds query and returns up to k chunks, best first. k <= 0 uses the configured top_k.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, mimirErrors.InvalidInput("search query is empty")
	}
	if k <= 0 {
		k = r.topK
	}

	vec, err := r.svc.embedder.RouteEmbedding(ctx, r.svc.embeddingModel, query)
	if err != nil {
		return nil, mimirErrors.Wrap(err, "embed query")
	}

	results, err := r.svc.store.Search(ctx, r.svc.collection, vec, k)
	if err != nil {
		return nil, mimirErrors.Wrap(err, "search vectors")
	}

	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		hits = append(hits, toHit(res))
	}
	return hits, nil
}

func toHit(res store.VectorResult) Hit {
	return Hit{
		Content:    res.Content,
		SourceURL:  res.Metadata[store.MetaSourceURL],
		SourceType: res.Metadata[store.MetaSourceType],
		Title:      res.Metadata[store.MetaTitle],
		Score:      res.Score,
	}
}
