package chunker

// DefaultSize is the chunk length, in characters, used when none is configured
const DefaultSize = 500

// Split cuts text into consecutive, non-overlapping windows of size characters.
// The last window may be shorter. Boundaries ignore words and sentences
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultSize
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
