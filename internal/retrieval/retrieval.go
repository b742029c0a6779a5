// Package retrieval supplies ranked reference snippets for prompt
// context. Documents live in Postgres with precomputed embeddings; the
// question is embedded on demand and ranked by cosine similarity in
// process. The collection is small (schema documentation, not per-video
// records), so a linear scan is the whole search.
package retrieval

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Snippet is one ranked reference text.
type Snippet struct {
	ID      string
	Content string
	Score   float64
}

// Retriever returns ranked reference snippets for a question. An empty
// result is a normal outcome, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, question string, limit int) ([]Snippet, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Document is a stored reference text with its embedding.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
}

// DocSource lists the stored reference documents.
type DocSource interface {
	Documents(ctx context.Context) ([]Document, error)
}

// VectorRetriever ranks stored documents against the embedded question.
// Results are cached per question text so repeated questions skip the
// embedding round trip.
type VectorRetriever struct {
	embed Embedder
	docs  DocSource
	cache *ttlcache.Cache[string, []Snippet]
	log   *slog.Logger
}

// NewVectorRetriever creates a retriever. cacheTTL <= 0 disables caching.
func NewVectorRetriever(log *slog.Logger, embed Embedder, docs DocSource, cacheTTL time.Duration) *VectorRetriever {
	r := &VectorRetriever{embed: embed, docs: docs, log: log}
	if cacheTTL > 0 {
		r.cache = ttlcache.New[string, []Snippet](
			ttlcache.WithTTL[string, []Snippet](cacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []Snippet](),
		)
		go r.cache.Start()
	}
	return r
}

// Stop releases the cache janitor, if any.
func (r *VectorRetriever) Stop() {
	if r.cache != nil {
		r.cache.Stop()
	}
}

// Retrieve embeds the question and returns the top limit documents by
// cosine similarity.
func (r *VectorRetriever) Retrieve(ctx context.Context, question string, limit int) ([]Snippet, error) {
	if r.cache != nil {
		if item := r.cache.Get(question); item != nil {
			return item.Value(), nil
		}
	}

	qv, err := r.embed.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	docs, err := r.docs.Documents(ctx)
	if err != nil {
		return nil, err
	}

	snippets := make([]Snippet, 0, len(docs))
	for _, d := range docs {
		snippets = append(snippets, Snippet{
			ID:      d.ID,
			Content: d.Content,
			Score:   cosine(qv, d.Embedding),
		})
	}
	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Score > snippets[j].Score
	})
	if limit > 0 && len(snippets) > limit {
		snippets = snippets[:limit]
	}

	if r.cache != nil {
		r.cache.Set(question, snippets, ttlcache.DefaultTTL)
	}
	r.log.Debug("retrieved context snippets", "question_len", len(question), "count", len(snippets))
	return snippets, nil
}

// cosine computes cosine similarity; mismatched or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
