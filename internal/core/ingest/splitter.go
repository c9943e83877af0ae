package ingest

// Default splitter tuning: bounded chunks with enough overlap that semantic
// context spanning a chunk boundary is not lost at query time.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// SplitterConfig tunes the character splitter.
type SplitterConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Chunk is one bounded piece of a document's text.
type Chunk struct {
	Text     string
	Position int
}

// NewSplitterConfig applies defaults for non-positive values.
func NewSplitterConfig(size, overlap int) SplitterConfig {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return SplitterConfig{ChunkSize: size, ChunkOverlap: overlap}
}

// Split cuts text into chunks of at most cfg.ChunkSize characters where each
// adjacent pair shares exactly cfg.ChunkOverlap characters, except possibly
// the final chunk which may be shorter. Positions are stable and zero-based.
func Split(text string, cfg SplitterConfig) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := cfg.ChunkSize - cfg.ChunkOverlap
	var out []Chunk
	pos := 0
	for start := 0; ; start += step {
		end := start + cfg.ChunkSize
		if end >= len(runes) {
			out = append(out, Chunk{Text: string(runes[start:]), Position: pos})
			break
		}
		out = append(out, Chunk{Text: string(runes[start:end]), Position: pos})
		pos++
	}
	return out
}
