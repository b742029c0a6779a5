package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/luckysmouk/vidlytics/internal/catalog"
	"github.com/luckysmouk/vidlytics/internal/llm"
)

// Resolution is the outcome of resolving a question. Exactly one of
// Intent or Direct is set: Direct carries a bare number salvaged from a
// malformed response when lenient mode is enabled.
type Resolution struct {
	Intent      catalog.Intent
	Direct      *int64
	Explanation string
}

// Resolver turns a free-form question into a validated catalog intent
// using a single generation-service call.
type Resolver struct {
	client  llm.Client
	log     *slog.Logger
	lenient bool
}

type Option func(*Resolver)

// WithLenientNumbers enables salvaging a bare integer from responses
// that carry no JSON object. Off by default: a salvaged number bypasses
// catalog validation and is only acceptable in interactive use.
func WithLenientNumbers() Option {
	return func(r *Resolver) { r.lenient = true }
}

func New(log *slog.Logger, client llm.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client: client,
		log:    log.With("component", "resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type rawResponse struct {
	Method      string                 `json:"method"`
	Params      map[string]interface{} `json:"params"`
	Explanation string                 `json:"explanation"`
}

// Resolve classifies the question into a catalog intent. contextText is
// optional reference material included in the user prompt.
func (r *Resolver) Resolve(ctx context.Context, question, contextText string) (Resolution, error) {
	response, err := r.client.Complete(ctx, SystemPrompt(), UserPrompt(question, contextText))
	if err != nil {
		return Resolution{}, &ModelUnavailableError{Err: err}
	}

	r.log.Debug("classifier response", "length", len(response))

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		if r.lenient {
			if n, ok := salvageNumber(response); ok {
				r.log.Warn("no intent object in response, salvaged bare number", "value", n)
				return Resolution{Direct: &n}, nil
			}
		}
		return Resolution{}, &ResponseParseError{Detail: "no JSON object in response"}
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return Resolution{}, &ResponseParseError{Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if raw.Method == "" {
		return Resolution{}, &ResponseParseError{Detail: "response object has no method field"}
	}

	params := make(map[string]string, len(raw.Params))
	for k, v := range raw.Params {
		params[k] = stringifyParam(v)
	}

	intent, err := catalog.Validate(catalog.RawIntent{
		Method:      raw.Method,
		Params:      params,
		Explanation: raw.Explanation,
	})
	if err != nil {
		return Resolution{}, err
	}

	r.log.Info("resolved intent", "method", intent.Method())
	return Resolution{Intent: intent, Explanation: raw.Explanation}, nil
}

// stringifyParam normalizes a JSON param value to text. Models emit
// numeric params both quoted and unquoted.
func stringifyParam(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// salvageNumber pulls the first run of digits out of a plain-text
// response.
func salvageNumber(s string) (int64, bool) {
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			return parseDigits(s[start:i])
		}
	}
	if start != -1 {
		return parseDigits(s[start:])
	}
	return 0, false
}

func parseDigits(s string) (int64, bool) {
	var n int64
	for _, r := range s {
		d := int64(r - '0')
		if n > (1<<63-1-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}

// extractJSON pulls a JSON object out of a model response, preferring
// fenced code blocks over raw text.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```json"); start != -1 {
		start += len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(content, "{") {
				return content
			}
		}
	}

	if start := strings.Index(response, "{"); start != -1 {
		return extractJSONObject(response, start)
	}

	return ""
}

// extractJSONObject scans a balanced object starting at s[start],
// ignoring braces inside string literals.
func extractJSONObject(s string, start int) string {
	if start >= len(s) || s[start] != '{' {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
