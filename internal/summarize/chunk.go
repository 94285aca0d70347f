package summarize

import "strings"

// maxChunkChars keeps a single prompt comfortably inside the provider's
// context window.
const maxChunkChars = 8000

// SplitChunks partitions text into chunks of at most maxChars characters,
// breaking only at paragraph boundaries so no line is ever cut mid-way.
// Empty chunks are dropped.
func SplitChunks(text string, maxChars int) []string {
	var (
		parts []string
		buf   []string
		size  int
	)
	flush := func() {
		chunk := strings.TrimSpace(strings.Join(buf, "\n"))
		if chunk != "" {
			parts = append(parts, chunk)
		}
	}
	for _, para := range strings.Split(text, "\n") {
		if size+len(para)+1 > maxChars {
			flush()
			buf, size = []string{para}, len(para)+1
		} else {
			buf = append(buf, para)
			size += len(para) + 1
		}
	}
	flush()
	return parts
}
