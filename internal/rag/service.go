package rag

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/internal/metrics"
	"github.com/sgupta/personabot/internal/rag/embedding"
	"github.com/sgupta/personabot/internal/rag/ingest"
	"github.com/sgupta/personabot/internal/rag/llm"
	"github.com/sgupta/personabot/internal/rag/vectordb"
	"github.com/sgupta/personabot/pkg/logging"
)

// Service is what the worker calls; it doesn't need to know about the llm,
// the embedder or the vector store behind it.
type Service interface {
	ProcessRequest(ctx context.Context, job jobmodel.Job, messageHistory []string) jobmodel.Job
	IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job
}

type service struct {
	vectorDB    vectordb.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logging.Logger
}

func NewService(vector vectordb.DataProcessor, provider llm.Provider, em embedding.Embedder) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: provider,
		embedder:    em,
		logger:      logging.NewLogger("RAG Service"),
	}
}

// ProcessRequest runs one chat question through the full pipeline:
// embedding, semantic cache, vector search, persona generation, background
// cache save.
func (s *service) ProcessRequest(ctx context.Context, job jobmodel.Job, messageHistory []string) jobmodel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", job.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Embedding
	queryVector, err := s.executeEmbeddingStep(processContext, log, &job)
	if err != nil {
		return s.jobError(job, err, "EMBEDDING_FAILURE", true)
	}

	// Cache check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, log, &job, queryVector)
	if found {
		return returnOutput(job, llm.Reply{Answer: cachedAnswer})
	}

	// Vector search
	matches, err := s.executeVectorSearchStep(processContext, log, &job, queryVector)
	if err != nil {
		return s.jobError(job, err, "VECTOR_DB_FAILURE", true)
	}

	// Persona generation (may run tool rounds internally)
	reply, err := s.executeLLMStep(processContext, log, &job, matches, messageHistory)
	if err != nil {
		return s.jobError(job, err, "LLM_GENERATION_FAILURE", true)
	}

	// Background cache save. Answers that triggered tools are visitor
	// specific and must not be replayed to someone else. The save outlives
	// the job context, which is cancelled as soon as the job returns.
	if len(reply.ToolsUsed) == 0 {
		saveContext, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		go func() {
			defer cancelSave()
			if err := s.vectorDB.SaveToCache(saveContext, uuid.New().String(), queryVector, reply.Answer); err != nil {
				log.Error("Failed to save to cache", "error", err)
			}
		}()
	}

	return returnOutput(job, reply)
}

func (s *service) IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.vectorDB)
	if j.Status != jobmodel.JobStatusComplete {
		return s.jobError(j, errors.New("ingest document failed"), "INGESTION_FAILURE", true)
	}
	return j
}
