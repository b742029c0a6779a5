package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/luckysmouk/vidlytics/internal/retrieval"
)

// ContextAssembler collects reference snippets relevant to a question.
// A nil retriever or a failed lookup degrades to an empty context:
// classification still works, only without schema hints.
type ContextAssembler struct {
	retriever retrieval.Retriever
	limit     int
	log       *slog.Logger
}

func NewContextAssembler(log *slog.Logger, retriever retrieval.Retriever, limit int) *ContextAssembler {
	if limit <= 0 {
		limit = 3
	}
	return &ContextAssembler{
		retriever: retriever,
		limit:     limit,
		log:       log.With("component", "context"),
	}
}

func (a *ContextAssembler) BuildContext(ctx context.Context, question string) string {
	if a.retriever == nil {
		return ""
	}

	snippets, err := a.retriever.Retrieve(ctx, question, a.limit)
	if err != nil {
		a.log.Warn("context retrieval failed, continuing without context", "error", err)
		return ""
	}
	if len(snippets) == 0 {
		return ""
	}

	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n\n")
}
