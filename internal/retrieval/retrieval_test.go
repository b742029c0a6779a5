package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vectors[text], nil
}

type fakeDocSource struct {
	docs []Document
	err  error
}

func (s *fakeDocSource) Documents(_ context.Context) ([]Document, error) {
	return s.docs, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetrieveRanksByCosine(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"вопрос про схему": {1, 0, 0},
	}}
	docs := &fakeDocSource{docs: []Document{
		{ID: "orthogonal", Content: "c", Embedding: []float32{0, 1, 0}},
		{ID: "aligned", Content: "a", Embedding: []float32{1, 0, 0}},
		{ID: "close", Content: "b", Embedding: []float32{1, 1, 0}},
	}}

	r := NewVectorRetriever(testLogger(), embedder, docs, 0)
	defer r.Stop()

	got, err := r.Retrieve(context.Background(), "вопрос про схему", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "aligned", got[0].ID)
	require.Equal(t, "close", got[1].ID)
	require.Greater(t, got[0].Score, got[1].Score)
}

func TestRetrieveCacheSkipsEmbedding(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"вопрос": {1, 0},
	}}
	docs := &fakeDocSource{docs: []Document{
		{ID: "doc", Content: "x", Embedding: []float32{1, 0}},
	}}

	r := NewVectorRetriever(testLogger(), embedder, docs, time.Minute)
	defer r.Stop()

	first, err := r.Retrieve(context.Background(), "вопрос", 1)
	require.NoError(t, err)
	second, err := r.Retrieve(context.Background(), "вопрос", 1)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, embedder.calls)
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	t.Parallel()

	r := NewVectorRetriever(testLogger(), &fakeEmbedder{err: errors.New("model offline")}, &fakeDocSource{}, 0)
	defer r.Stop()

	_, err := r.Retrieve(context.Background(), "вопрос", 1)
	require.Error(t, err)
}

func TestRetrieveEmptyCollection(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vectors: map[string][]float32{"вопрос": {1}}}
	r := NewVectorRetriever(testLogger(), embedder, &fakeDocSource{}, 0)
	defer r.Stop()

	got, err := r.Retrieve(context.Background(), "вопрос", 3)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCosine(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.0, cosine([]float32{1, 2}, []float32{1, 2}), 1e-9)
	require.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	require.Zero(t, cosine([]float32{1, 0}, []float32{1}))
	require.Zero(t, cosine(nil, nil))
	require.Zero(t, cosine([]float32{0, 0}, []float32{1, 1}))
}
