package qdrantdb

import (
	"context"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/sgupta/personabot/internal/config"
)

// Semantic answer cache: near-identical questions reuse an earlier answer
// instead of another LLM round trip.

func initCacheCollection(ctx context.Context, client *qdrant.Client) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if err := createCollection(ctx, client, config.SemanticCacheCollectionName); err != nil {
		log.Error("Semantic cache collection creation failed", "error", err)
	}
}

func (db *ClientHolder) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	searchResult, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.SemanticCacheCollectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil || len(searchResult) == 0 {
		return "", false, err
	}

	log.Debug("Found cached candidate", "score", searchResult[0].Score)
	if searchResult[0].Score < config.CacheSimilarityCutoff {
		return "", false, nil
	}

	log.Info("Semantic cache hit")
	answer := searchResult[0].Payload["answer"].GetStringValue()
	return answer, true, nil
}

func (db *ClientHolder) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	log.Debug("Saving answer to cache")
	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.SemanticCacheCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":    answer,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		log.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
