package rag_test

import (
	"context"

	"github.com/sgupta/personabot/internal/domain/docmodel"
	"github.com/sgupta/personabot/internal/rag/llm"
	"github.com/sgupta/personabot/internal/rag/vectordb"
)

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks, isHuge)
	}
	return make([][]float32, len(chunks)), nil
}

type MockVectorDB struct {
	OnSearch           func(ctx context.Context, v []float32) ([]vectordb.Match, error)
	OnGetCachedAnswer  func(ctx context.Context, v []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, v []float32, answer string) error
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, coll string, chunks []docmodel.DocChunk, vectors [][]float32) error
}

func (m *MockVectorDB) Search(ctx context.Context, v []float32) ([]vectordb.Match, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v)
	}
	return []vectordb.Match{}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, answer)
	}
	return nil
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, coll string, chunks []docmodel.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, coll, chunks, vectors)
	}
	return nil
}

type MockLLM struct {
	OnGenerate func(ctx context.Context, q string, matches []string, history []string) (llm.Reply, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, matches []string, history []string) (llm.Reply, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, matches, history)
	}
	return llm.Reply{Answer: "default answer"}, nil
}
