package chunklod

// Depth hint thresholds, in average vertices per chunk.
const (
	lowVerticesPerChunk  = 500
	highVerticesPerChunk = 5000
)

// Stats summarizes a ProcessGrid run.
type Stats struct {
	InputVertices        int // vertices in the padded heightfield
	OutputVertices       int // vertices active at some level
	TotalChunks          int
	GeneratedChunks      int
	RealTriangles        int
	DegenerateTriangles  int
	MostVerticesPerChunk int
	OutputSize           int64
}

// AverageVerticesPerChunk returns active vertices per generated chunk.
func (s Stats) AverageVerticesPerChunk() float64 {
	if s.GeneratedChunks == 0 {
		return 0
	}
	return float64(s.OutputVertices) / float64(s.GeneratedChunks)
}

// BytesPerInputVertex returns the output size per heightfield vertex.
func (s Stats) BytesPerInputVertex() float64 {
	if s.InputVertices == 0 {
		return 0
	}
	return float64(s.OutputSize) / float64(s.InputVertices)
}

// BytesPerOutputVertex returns the output size per active vertex.
func (s Stats) BytesPerOutputVertex() float64 {
	if s.OutputVertices == 0 {
		return 0
	}
	return float64(s.OutputSize) / float64(s.OutputVertices)
}

// SuggestedDepth returns the tree depth to try next: one shallower when
// chunks average under 500 vertices, one deeper above 5000.
func (s Stats) SuggestedDepth(depth int) int {
	switch avg := s.AverageVerticesPerChunk(); {
	case avg < lowVerticesPerChunk:
		return max(depth-1, 1)
	case avg > highVerticesPerChunk:
		return depth + 1
	default:
		return depth
	}
}
