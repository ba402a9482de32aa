package llm

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"
)

// HashEmbedder implements interfaces.EmbeddingService with a deterministic
// hash-derived vector. It has no semantic quality and exists for development
// and tests, where a cloud round trip per chunk is unacceptable. Identical
// text always produces an identical vector.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a deterministic embedder with the given dimension
func NewHashEmbedder(dimension int) *HashEmbedder {
	return &HashEmbedder{dimension: dimension}
}

// Dimension returns the configured vector dimension
func (e *HashEmbedder) Dimension() int { return e.dimension }

// Embed derives a unit vector from successive md5 digests of the text. Each
// digest contributes four float32 components mapped into [-1, 1].
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vector := make([]float32, e.dimension)
	var norm float64
	for i := 0; i < e.dimension; i += 4 {
		digest := md5.Sum([]byte(fmt.Sprintf("%s:%d", text, i/4)))
		for j := 0; j < 4 && i+j < e.dimension; j++ {
			raw := binary.BigEndian.Uint32(digest[j*4 : j*4+4])
			v := float32(raw)/float32(math.MaxUint32)*2 - 1
			vector[i+j] = v
			norm += float64(v) * float64(v)
		}
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}
