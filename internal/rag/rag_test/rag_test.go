package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/domain/docmodel"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/internal/rag"
	"github.com/sgupta/personabot/internal/rag/llm"
	"github.com/sgupta/personabot/internal/rag/vectordb"
)

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStatus jobmodel.JobStatus
		expectedAnswer string
		expectedErr    string
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (llm.Reply, error) {
					return llm.Reply{Answer: "final answer"}, nil
				}
			},
			expectedStatus: jobmodel.JobStatusQueued,
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (llm.Reply, error) {
					t.Error("LLM should not be called on a cache hit")
					return llm.Reply{}, nil
				}
			},
			expectedStatus: jobmodel.JobStatusQueued,
			expectedAnswer: "cached answer",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedErr:    "EMBEDDING_FAILURE",
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				v.OnSearch = func(ctx context.Context, vec []float32) ([]vectordb.Match, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedErr:    "VECTOR_DB_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "", false, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (llm.Reply, error) {
					return llm.Reply{}, errors.New("provider down")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := rag.NewService(mVec, mLLM, mEmbed)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobmodel.Job{
				Id:     "test-job",
				Status: jobmodel.JobStatusQueued,
				Payload: jobmodel.Payload{
					Question: "test question",
				},
			}

			result := s.ProcessRequest(ctx, job, []string{})

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedAnswer != "" && result.Payload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.Payload.Answer, tt.expectedAnswer)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %s", result.Error.Code, tt.expectedErr)
			}
		})
	}
}

func TestProcessRequest_SourceCitations(t *testing.T) {
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, vec []float32) ([]vectordb.Match, error) {
			return []vectordb.Match{
				{Content: "worked at Acme", DocName: "resume.pdf", PageNum: 2},
			}, nil
		},
	}
	s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "citation-trace")
	job := jobmodel.Job{Id: "cite-job", Payload: jobmodel.Payload{Question: "where did you work"}}

	result := s.ProcessRequest(ctx, job, nil)

	if len(result.Payload.Sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(result.Payload.Sources))
	}
	if result.Payload.Sources[0] != "resume.pdf (page 2)" {
		t.Errorf("Source citation mismatch: %q", result.Payload.Sources[0])
	}
}

func TestProcessRequest_ToolAnswersNotCached(t *testing.T) {
	cacheSaved := make(chan string, 1)

	mVec := &MockVectorDB{
		OnSaveToCache: func(ctx context.Context, id string, v []float32, answer string) error {
			cacheSaved <- answer
			return nil
		},
	}

	t.Run("tool answer skips the cache", func(t *testing.T) {
		mLLM := &MockLLM{
			OnGenerate: func(ctx context.Context, q string, m []string, h []string) (llm.Reply, error) {
				return llm.Reply{Answer: "I'll pass that on", ToolsUsed: []string{"record_user_details"}}, nil
			},
		}
		s := rag.NewService(mVec, mLLM, &MockEmbedder{})
		job := jobmodel.Job{Id: "tool-job", Payload: jobmodel.Payload{Question: "my email is a@b.com"}}

		result := s.ProcessRequest(context.Background(), job, nil)
		if len(result.Payload.ToolsUsed) != 1 {
			t.Fatalf("Expected tool usage recorded, got %v", result.Payload.ToolsUsed)
		}

		select {
		case answer := <-cacheSaved:
			t.Errorf("Tool-triggered answer was cached: %q", answer)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("plain answer is cached", func(t *testing.T) {
		s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})
		job := jobmodel.Job{Id: "plain-job", Payload: jobmodel.Payload{Question: "what do you do"}}

		s.ProcessRequest(context.Background(), job, nil)

		select {
		case answer := <-cacheSaved:
			if answer != "default answer" {
				t.Errorf("Cached wrong answer: %q", answer)
			}
		case <-time.After(time.Second):
			t.Error("Expected answer to be cached in the background")
		}
	})
}

func TestProcessRequest_CacheSaveSurvivesJobCancel(t *testing.T) {
	cacheSaved := make(chan error, 1)

	mVec := &MockVectorDB{
		OnSaveToCache: func(ctx context.Context, id string, v []float32, answer string) error {
			// simulate network round trip, then check the save still has
			// a live context even though the job's was cancelled
			time.Sleep(5 * time.Millisecond)
			cacheSaved <- ctx.Err()
			return ctx.Err()
		},
	}
	s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	job := jobmodel.Job{Id: "cancel-job", Payload: jobmodel.Payload{Question: "what do you do"}}
	s.ProcessRequest(ctx, job, nil)
	cancel()

	select {
	case err := <-cacheSaved:
		if err != nil {
			t.Errorf("Cache save ran on a dead context: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Expected the cache save to run in the background")
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	dummyFile := filepath.Join(t.TempDir(), "test_ingest.txt")
	if err := os.WriteFile(dummyFile, []byte("test content for ingestion"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB)
		expectedStatus jobmodel.JobStatus
		expectedErr    string
	}{
		{
			name: "Ingestion_Success",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnCreateCollection = func(ctx context.Context, name string) error {
					return nil
				}
				v.OnUpsertBatch = func(ctx context.Context, coll string, chunks []docmodel.DocChunk, vectors [][]float32) error {
					return nil
				}
				e.OnBatchEmbedding = func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
					return make([][]float32, len(chunks)), nil
				}
			},
			expectedStatus: jobmodel.JobStatusComplete,
		},
		{
			name: "Failure_Collection_Creation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnCreateCollection = func(ctx context.Context, name string) error {
					return errors.New("connection refused")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedErr:    "INGESTION_FAILURE",
		},
		{
			name: "Failure_Batch_Upsert",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnCreateCollection = func(ctx context.Context, name string) error {
					return nil
				}
				e.OnBatchEmbedding = func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
					return make([][]float32, len(chunks)), nil
				}
				v.OnUpsertBatch = func(ctx context.Context, coll string, chunks []docmodel.DocChunk, vectors [][]float32) error {
					return errors.New("disk full")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedErr:    "INGESTION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}

			tt.setupMocks(mEmbed, mVec)

			s := rag.NewService(mVec, &MockLLM{}, mEmbed)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
			job := jobmodel.Job{
				Id: "ingest-job-1",
				Payload: jobmodel.Payload{
					IngestFileName: "test_ingest.txt",
					IngestPath:     dummyFile,
				},
			}

			result := s.IngestDocument(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %s", result.Error.Code, tt.expectedErr)
			}
		})
	}
}
