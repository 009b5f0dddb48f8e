package vectordb

import (
	"context"

	"github.com/sgupta/personabot/internal/domain/docmodel"
)

// Match is one retrieved chunk plus the metadata the prompt and the API
// response surface.
type Match struct {
	Content string
	DocName string
	DocId   string
	PageNum int64
	ChunkId string
	Score   float32
}

type DataProcessor interface {
	Search(ctx context.Context, vectorVal []float32) ([]Match, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	// ingest path
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []docmodel.DocChunk, vectors [][]float32) error
}
