package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashUserID(t *testing.T) {
	InitHashSalt()

	t.Run("anonymous", func(t *testing.T) {
		require.Equal(t, "<anon>", HashUserID(""))
	})

	t.Run("deterministic", func(t *testing.T) {
		first := HashUserID("user-1")
		require.Len(t, first, 8)
		require.Equal(t, first, HashUserID("user-1"))
	})

	t.Run("distinct users hash differently", func(t *testing.T) {
		require.NotEqual(t, HashUserID("user-1"), HashUserID("user-2"))
	})

	t.Run("never leaks the raw id", func(t *testing.T) {
		require.NotContains(t, HashUserID("alice@example.com"), "alice")
	})
}

func TestSanitizeDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "<empty>"},
		{name: "single word", input: "coffee", want: "<redacted: 1 words, 6 chars>"},
		{name: "multiple words", input: "dinner with friends", want: "<redacted: 3 words, 19 chars>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SanitizeDescription(tt.input))
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "<empty>", SanitizeText(""))
	require.Equal(t, "<5 chars>", SanitizeText("short"))
	require.Equal(t, "a v...<23 chars>", SanitizeText("a very long description"))
}
