package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsExit(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"exit", "quit", "выход", "EXIT", "Выход"} {
		require.True(t, isExit(input), input)
	}
	for _, input := range []string{"", "сколько видео?", "exit now"} {
		require.False(t, isExit(input), input)
	}
}

func TestContextLimitFromEnv(t *testing.T) {
	t.Setenv("CONTEXT_LIMIT", "")
	require.Equal(t, defaultContextLimit, contextLimitFromEnv())

	t.Setenv("CONTEXT_LIMIT", "7")
	require.Equal(t, 7, contextLimitFromEnv())

	t.Setenv("CONTEXT_LIMIT", "-1")
	require.Equal(t, defaultContextLimit, contextLimitFromEnv())

	t.Setenv("CONTEXT_LIMIT", "garbage")
	require.Equal(t, defaultContextLimit, contextLimitFromEnv())
}

func TestNewLLMClientUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gpt-something")

	_, err := newLLMClient(newLogger(false))
	require.ErrorContains(t, err, "unknown LLM_PROVIDER")
}

func TestNewLLMClientAnthropicRequiresKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := newLLMClient(newLogger(false))
	require.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}
