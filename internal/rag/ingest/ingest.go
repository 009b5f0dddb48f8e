package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/domain/docmodel"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/internal/rag/embedding"
	"github.com/sgupta/personabot/internal/rag/vectordb"
	"github.com/sgupta/personabot/pkg/logging"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger *logging.Logger

// ProcessDocumentIngestion extracts, chunks, embeds and upserts one document
// into the knowledge collection, then removes the staged file.
func ProcessDocumentIngestion(ctx context.Context, job jobmodel.Job, e embedding.Embedder, vectorDatabase vectordb.DataProcessor) jobmodel.Job {
	logger = logging.NewLogger("Document Ingestion")
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	docName := job.Payload.IngestFileName
	docPath := job.Payload.IngestPath

	log.Debug("Processing document", "filename", docName, "path", docPath)

	job.CurrentStep = jobmodel.IngestProcessing
	if err := vectorDatabase.CreateCollection(ctx, config.KnowledgeCollectionName); err != nil {
		log.Error("Error creating collection", "error", err)
		job.Status = jobmodel.JobStatusError
		return job
	}

	docType := getDocType(docPath)
	log.Debug("Processing document", "type", docType)
	if docType == docmodel.ERR {
		log.Error("Unsupported document type", "path", docPath)
		job.Status = jobmodel.JobStatusError
		job.Error.Message = "Unsupported document type"
		return job
	}

	doc := docmodel.Document{
		Id:          job.Id,
		Name:        docName,
		IngestedAt:  time.Now(),
		ContentType: docType,
	}

	rawPages, err := extractText(docPath, doc.ContentType)
	if err != nil {
		log.Error("Error processing document", "error", err)
		job.Status = jobmodel.JobStatusError
		job.Error.Message = "Error extracting document content"
		return job
	}

	log.Debug("Processing document", "raw pages", len(rawPages))
	chunks := PrepareChunks(rawPages, doc, config.GoogleEmbeddingModel)

	log.Debug("Processing document", "chunks", len(chunks))
	if err := BatchIngest(ctx, chunks, vectorDatabase, e); err != nil {
		job.Status = jobmodel.JobStatusError
		log.Error("Error processing document", "error", err)
		return job
	}

	// profile documents are ingested in place; only uploads are staged copies
	if strings.Contains(docPath, config.StagedUploadsDir) {
		if err := os.Remove(docPath); err != nil {
			log.Error("Error removing staged file", "error", err)
		}
	}
	job.Status = jobmodel.JobStatusComplete
	return job
}

// BatchIngest embeds chunks in fixed-size batches and upserts each batch.
// Truly huge documents go through the embedding batch-job path instead of
// inline calls.
func BatchIngest(ctx context.Context, chunks []docmodel.DocChunk, vectorDatabase vectordb.DataProcessor, embedder embedding.Embedder) error {
	logger = logging.NewLogger("Batch Ingestion")
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	batchSize := 100
	isHugeDataSet := len(chunks) > 1000000
	if isHugeDataSet {
		log.Debug("Is a huge dataset")
	}

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Text
		}

		log.Debug("Starting embedding call", "batch length", len(currentBatch))
		vectors, err := embedder.BatchEmbedding(ctx, texts, isHugeDataSet)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		if err := vectorDatabase.UpsertBatch(ctx, config.KnowledgeCollectionName, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting to qdrant failed: %w", err)
		}
	}

	return nil
}
