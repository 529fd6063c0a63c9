package docembed

// DefaultChunkSize is the chunk length in characters (runes).
const DefaultChunkSize = 1000

// Chunk splits each page into runs of at most size runes. Chunks never span
// pages and empty pages produce no chunks.
func Chunk(pages []string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []string
	for _, page := range pages {
		runes := []rune(page)
		for start := 0; start < len(runes); start += size {
			end := min(start+size, len(runes))
			chunks = append(chunks, string(runes[start:end]))
		}
	}
	return chunks
}
