package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_FixedWindows(t *testing.T) {
	text := strings.Repeat("a", 500) + strings.Repeat("b", 500) + strings.Repeat("c", 200)

	chunks := Split(text, 500)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
	assert.Len(t, chunks[2], 200)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_EmptyInput(t *testing.T) {
	assert.Empty(t, Split("", 500))
}

func TestSplit_CountAndReconstruction(t *testing.T) {
	cases := []struct {
		name string
		text string
		size int
	}{
		{"shorter than size", "hello world", 500},
		{"exact multiple", strings.Repeat("x", 30), 10},
		{"one over", strings.Repeat("x", 31), 10},
		{"single char windows", "abcdef", 1},
		{"multibyte", strings.Repeat("привет мир ", 20), 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := Split(tc.text, tc.size)

			n := utf8.RuneCountInString(tc.text)
			assert.Len(t, chunks, (n+tc.size-1)/tc.size)
			for _, c := range chunks {
				assert.LessOrEqual(t, utf8.RuneCountInString(c), tc.size)
				assert.True(t, utf8.ValidString(c))
			}
			assert.Equal(t, tc.text, strings.Join(chunks, ""))
		})
	}
}

func TestSplit_NonPositiveSizeUsesDefault(t *testing.T) {
	chunks := Split(strings.Repeat("z", DefaultSize+1), 0)

	require.Len(t, chunks, 2)
	assert.Len(t, chunks[1], 1)
}
