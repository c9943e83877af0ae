package ingest

import (
	"strings"
	"testing"
)

func defaultCfg() SplitterConfig {
	return NewSplitterConfig(DefaultChunkSize, DefaultChunkOverlap)
}

func TestSplitEmptyText(t *testing.T) {
	if got := Split("", defaultCfg()); got != nil {
		t.Fatalf("expected nil for empty text, got %d chunks", len(got))
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := Split(text, defaultCfg())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Fatalf("chunk text does not match input")
	}
	if chunks[0].Position != 0 {
		t.Fatalf("expected position 0, got %d", chunks[0].Position)
	}
}

func TestSplit2500CharsYieldsThreeChunks(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2500; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks := Split(text, defaultCfg())
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Text) > 1000 {
			t.Fatalf("chunk %d exceeds max size: %d", i, len(ch.Text))
		}
		if ch.Position != i {
			t.Fatalf("chunk %d has position %d", i, ch.Position)
		}
	}
}

func TestSplitAdjacentChunksOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2500; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	chunks := Split(sb.String(), defaultCfg())

	for i := 0; i+1 < len(chunks); i++ {
		tail := chunks[i].Text[len(chunks[i].Text)-DefaultChunkOverlap:]
		head := chunks[i+1].Text[:DefaultChunkOverlap]
		if tail != head {
			t.Fatalf("chunks %d and %d do not share a %d-char overlap", i, i+1, DefaultChunkOverlap)
		}
	}
}

func TestSplitCoversSourceText(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2500; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()
	cfg := defaultCfg()
	chunks := Split(text, cfg)

	// Reassemble by dropping each successor's overlapping head.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Text)
	for i := 1; i < len(chunks); i++ {
		rebuilt.WriteString(chunks[i].Text[cfg.ChunkOverlap:])
	}
	if rebuilt.String() != text {
		t.Fatalf("chunks do not cover the source text")
	}
}

func TestSplitExactBoundary(t *testing.T) {
	// 1800 chars: second window ends exactly at the text end.
	text := strings.Repeat("x", 1800)
	chunks := Split(text, defaultCfg())
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[1].Text) != 1000 {
		t.Fatalf("expected final chunk of 1000 chars, got %d", len(chunks[1].Text))
	}
}

func TestNewSplitterConfigDefaults(t *testing.T) {
	cfg := NewSplitterConfig(0, -1)
	if cfg.ChunkSize != DefaultChunkSize || cfg.ChunkOverlap != DefaultChunkOverlap {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	// An overlap >= size would never advance the window.
	cfg = NewSplitterConfig(100, 100)
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		t.Fatalf("overlap %d not clamped below size %d", cfg.ChunkOverlap, cfg.ChunkSize)
	}
}
