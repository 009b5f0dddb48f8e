package rag

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/internal/metrics"
	"github.com/sgupta/personabot/internal/rag/llm"
	"github.com/sgupta/personabot/internal/rag/vectordb"
	"github.com/sgupta/personabot/pkg/logging"
)

func returnOutput(job jobmodel.Job, reply llm.Reply) jobmodel.Job {
	job.Payload.Answer = reply.Answer
	job.Payload.ToolsUsed = reply.ToolsUsed
	job.CurrentStep = jobmodel.Complete
	return job
}

func logStep(job jobmodel.Job, status jobmodel.InternalStatus, log *logging.Logger) jobmodel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobmodel.Job, err error, message string, canRetry bool) jobmodel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobmodel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobmodel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logging.Logger, job *jobmodel.Job) ([]float32, error) {
	*job = logStep(*job, jobmodel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.Payload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logging.Logger, job *jobmodel.Job, emb []float32) (string, bool) {
	*job = logStep(*job, jobmodel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logging.Logger, job *jobmodel.Job, emb []float32) ([]string, error) {
	*job = logStep(*job, jobmodel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.vectorDB.Search(ctx, emb)
	if err != nil {
		return nil, err
	}

	job.Payload.Sources = sourcesFromMatches(matches)
	return promptChunks(matches), nil
}

func (s *service) executeLLMStep(ctx context.Context, log *logging.Logger, job *jobmodel.Job, matches []string, history []string) (llm.Reply, error) {
	*job = logStep(*job, jobmodel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, job.Payload.Question, matches, history)
}

// promptChunks renders matches the way the persona prompt expects them.
func promptChunks(matches []vectordb.Match) []string {
	chunks := make([]string, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, fmt.Sprintf("[%s - page %d]:\n%s", m.DocName, m.PageNum, m.Content))
	}
	return chunks
}

// sourcesFromMatches is the citation list surfaced in the API response.
func sourcesFromMatches(matches []vectordb.Match) []string {
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, fmt.Sprintf("%s (page %d)", m.DocName, m.PageNum))
	}
	return sources
}
