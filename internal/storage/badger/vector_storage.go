package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/galenhq/galen/internal/interfaces"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// vectorPoint is the stored form of one embedded item. The payload is kept
// as JSON bytes so gob never has to encode interface values.
type vectorPoint struct {
	Key         string `badgerhold:"key"` // "<collection>/<id>"
	Collection  string `badgerhold:"index"`
	PointID     string
	Vector      []float32
	PayloadJSON []byte
}

// VectorStorage implements interfaces.VectorStore on badgerhold with a
// brute-force cosine scan per collection. Collections here are tens of
// thousands of points at most, where a full scan is cheaper than keeping an
// ANN index consistent.
type VectorStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorStorage creates the badger-backed vector store
func NewVectorStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VectorStore {
	return &VectorStorage{db: db, logger: logger}
}

// Upsert stores or replaces one point in a collection
func (v *VectorStorage) Upsert(_ context.Context, collection, id string, vector []float32, payload map[string]interface{}) error {
	if collection == "" || id == "" {
		return fmt.Errorf("collection and id are required")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload for %s: %w", id, err)
	}

	point := &vectorPoint{
		Key:         collection + "/" + id,
		Collection:  collection,
		PointID:     id,
		Vector:      vector,
		PayloadJSON: payloadJSON,
	}
	if err := v.db.Store().Upsert(point.Key, point); err != nil {
		return fmt.Errorf("failed to upsert vector point %s: %w", point.Key, err)
	}
	return nil
}

// Search scans a collection and returns points ordered by cosine similarity.
// Filter entries must all match the point's payload values.
func (v *VectorStorage) Search(_ context.Context, collection string, vector []float32, opts interfaces.SearchOptions) ([]interfaces.SearchResult, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection is required")
	}

	var points []vectorPoint
	if err := v.db.Store().Find(&points, badgerhold.Where("Collection").Eq(collection).Index("Collection")); err != nil {
		return nil, fmt.Errorf("failed to scan collection %s: %w", collection, err)
	}

	var results []interfaces.SearchResult
	for _, point := range points {
		var payload map[string]interface{}
		if len(point.PayloadJSON) > 0 {
			if err := json.Unmarshal(point.PayloadJSON, &payload); err != nil {
				v.logger.Warn().Err(err).Str("point", point.Key).Msg("Skipping point with corrupt payload")
				continue
			}
		}
		if !matchesFilter(payload, opts.Filter) {
			continue
		}

		score := cosineSimilarity(vector, point.Vector)
		if score < opts.ScoreThreshold {
			continue
		}
		results = append(results, interfaces.SearchResult{
			ID:      point.PointID,
			Score:   score,
			Payload: payload,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func matchesFilter(payload map[string]interface{}, filter map[string]string) bool {
	for key, want := range filter {
		got, ok := payload[key].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
