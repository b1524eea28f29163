package chunklod

import "testing"

func TestStats_AverageVerticesPerChunk(t *testing.T) {
	if avg := (Stats{}).AverageVerticesPerChunk(); avg != 0 {
		t.Errorf("expected 0 for no chunks, got %v", avg)
	}

	s := Stats{OutputVertices: 1000, GeneratedChunks: 8}
	if avg := s.AverageVerticesPerChunk(); avg != 125 {
		t.Errorf("expected 125, got %v", avg)
	}
}

func TestStats_BytesPerVertex(t *testing.T) {
	s := Stats{InputVertices: 289, OutputVertices: 100, OutputSize: 2890}
	if b := s.BytesPerInputVertex(); b != 10 {
		t.Errorf("expected 10 bytes per input vertex, got %v", b)
	}
	if b := s.BytesPerOutputVertex(); b != 28.9 {
		t.Errorf("expected 28.9 bytes per output vertex, got %v", b)
	}
	if b := (Stats{}).BytesPerOutputVertex(); b != 0 {
		t.Errorf("expected 0 with no vertices, got %v", b)
	}
}

func TestStats_SuggestedDepth(t *testing.T) {
	tests := []struct {
		vertices, chunks int
		depth, want      int
	}{
		{100, 1, 6, 5},       // 100 per chunk
		{499 * 4, 4, 6, 5},   // just under the low mark
		{500 * 4, 4, 6, 6},   // at the low mark
		{5000 * 4, 4, 6, 6},  // at the high mark
		{5001 * 4, 4, 6, 7},  // above the high mark
		{10, 5, 1, 1},        // never below 1
	}

	for _, tt := range tests {
		s := Stats{OutputVertices: tt.vertices, GeneratedChunks: tt.chunks}
		if got := s.SuggestedDepth(tt.depth); got != tt.want {
			t.Errorf("%d vertices / %d chunks at depth %d: expected %d, got %d", tt.vertices, tt.chunks, tt.depth, tt.want, got)
		}
	}
}
