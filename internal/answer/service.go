// Package answer hosts the top of the pipeline: the one operation the
// rest of the system calls. Answer always returns a user-displayable
// string and never lets a pipeline fault escape.
package answer

import (
	"context"
	"log/slog"
	"time"

	"github.com/luckysmouk/vidlytics/internal/catalog"
	"github.com/luckysmouk/vidlytics/internal/resolver"
)

// IntentResolver is implemented by resolver.Resolver.
type IntentResolver interface {
	Resolve(ctx context.Context, question, contextText string) (resolver.Resolution, error)
}

// IntentExecutor is implemented by dispatch.Dispatcher.
type IntentExecutor interface {
	Execute(ctx context.Context, intent catalog.Intent) (int64, error)
}

// ContextBuilder is implemented by resolver.ContextAssembler.
type ContextBuilder interface {
	BuildContext(ctx context.Context, question string) string
}

type Service struct {
	resolver   IntentResolver
	dispatcher IntentExecutor
	contexts   ContextBuilder
	log        *slog.Logger
}

func NewService(log *slog.Logger, res IntentResolver, disp IntentExecutor, ctxBuilder ContextBuilder) *Service {
	return &Service{
		resolver:   res,
		dispatcher: disp,
		contexts:   ctxBuilder,
		log:        log.With("component", "answer"),
	}
}

// Answer resolves and executes a question, returning either a decimal
// number or a diagnostic sentence. Given identical input and unchanged
// stored data the result is identical.
func (s *Service) Answer(ctx context.Context, question string) string {
	start := time.Now()
	defer func() {
		questionDuration.Observe(time.Since(start).Seconds())
	}()

	contextText := ""
	if s.contexts != nil {
		contextText = s.contexts.BuildContext(ctx, question)
	}

	res, err := s.resolver.Resolve(ctx, question, contextText)
	if err != nil {
		s.log.Warn("resolution failed", "question", question, "error", err)
		questionsTotal.WithLabelValues("resolve_error").Inc()
		return FormatError(err)
	}

	if res.Direct != nil {
		s.log.Info("answered from salvaged number", "value", *res.Direct)
		questionsTotal.WithLabelValues("direct").Inc()
		return FormatScalar(*res.Direct)
	}

	intentsTotal.WithLabelValues(res.Intent.Method()).Inc()

	val, err := s.dispatcher.Execute(ctx, res.Intent)
	if err != nil {
		s.log.Warn("dispatch failed", "method", res.Intent.Method(), "error", err)
		questionsTotal.WithLabelValues("dispatch_error").Inc()
		return FormatError(err)
	}

	s.log.Info("question answered",
		"method", res.Intent.Method(),
		"value", val,
		"duration", time.Since(start))
	questionsTotal.WithLabelValues("ok").Inc()
	return FormatScalar(val)
}
