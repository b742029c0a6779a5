package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/luckysmouk/vidlytics/internal/answer"
	"github.com/luckysmouk/vidlytics/internal/dates"
	"github.com/luckysmouk/vidlytics/internal/dispatch"
	"github.com/luckysmouk/vidlytics/internal/llm"
	"github.com/luckysmouk/vidlytics/internal/resolver"
	"github.com/luckysmouk/vidlytics/internal/retrieval"
	"github.com/luckysmouk/vidlytics/internal/sqlgen"
	"github.com/luckysmouk/vidlytics/internal/store"
)

const (
	defaultOllamaURL    = "http://localhost:11434"
	defaultOllamaModel  = "qwen2.5:7b"
	defaultEmbedModel   = "nomic-embed-text-v2-moe"
	defaultContextLimit = 3
	defaultCacheTTL     = 5 * time.Minute
)

// app holds the wired pipeline shared by the commands.
type app struct {
	log       *slog.Logger
	store     *store.Store
	retriever *retrieval.VectorRetriever
	service   *answer.Service
	generator *sqlgen.Generator
}

// appOptions control optional pipeline pieces per command.
type appOptions struct {
	lenient    bool
	noRetrieve bool
}

// newApp connects storage and wires the pipeline. Storage connection
// failure is startup-fatal: the caller reports it and exits.
func newApp(ctx context.Context, log *slog.Logger, opts appOptions) (*app, error) {
	st, err := store.Connect(ctx, log, store.ConfigFromEnv())
	if err != nil {
		return nil, err
	}

	client, err := newLLMClient(log)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &app{log: log, store: st}

	if !opts.noRetrieve {
		a.retriever = retrieval.NewVectorRetriever(log, newEmbedder(), st, defaultCacheTTL)
	}

	var resOpts []resolver.Option
	if opts.lenient {
		resOpts = append(resOpts, resolver.WithLenientNumbers())
	}

	res := resolver.New(log, client, resOpts...)
	disp := dispatch.New(log, st, dates.NewRussian())
	assembler := resolver.NewContextAssembler(log, a.retriever, contextLimitFromEnv())

	a.service = answer.NewService(log, res, disp, assembler)
	a.generator = sqlgen.New(log, client, st)
	return a, nil
}

func (a *app) Close() {
	if a.retriever != nil {
		a.retriever.Stop()
	}
	a.store.Close()
}

// newLLMClient picks the generation backend from LLM_PROVIDER: "ollama"
// (default, matching the original local deployment) or "anthropic".
func newLLMClient(log *slog.Logger) (llm.Client, error) {
	switch provider := envOr("LLM_PROVIDER", "ollama"); provider {
	case "ollama":
		return llm.NewOllamaClient(
			envOr("OLLAMA_URL", defaultOllamaURL),
			envOr("OLLAMA_MODEL", defaultOllamaModel),
		), nil
	case "anthropic":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		model := anthropic.Model(envOr("ANTHROPIC_MODEL", string(anthropic.ModelClaude3_5Haiku20241022)))
		return llm.NewAnthropicClient(log, model, 1024), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (expected ollama or anthropic)", provider)
	}
}

func newEmbedder() retrieval.Embedder {
	return retrieval.NewOllamaEmbedder(
		envOr("OLLAMA_URL", defaultOllamaURL),
		envOr("OLLAMA_EMBED_MODEL", defaultEmbedModel),
	)
}

func contextLimitFromEnv() int {
	if v := os.Getenv("CONTEXT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultContextLimit
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
