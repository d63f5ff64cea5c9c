package stringutil_test

import (
	"testing"

	"github.com/crossban/xban/pkg/stringutil"
	"github.com/stretchr/testify/require"
)

func TestScrubPrintable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "spamming invites", "spamming invites"},
		{"keeps tab", "a\tb", "a\tb"},
		{"drops newline", "line one\nline two", "line oneline two"},
		{"drops control chars", "abc\x00\x1b[2Jdef", "abc[2Jdef"},
		{"keeps latin-1", "réason ÿ", "réason ÿ"},
		{"drops emoji", "ban \U0001F600 now", "ban  now"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, stringutil.ScrubPrintable(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", stringutil.Truncate("abcdef", 3))
	require.Equal(t, "abc", stringutil.Truncate("abc", 10))
	require.Empty(t, stringutil.Truncate("", 10))
}
