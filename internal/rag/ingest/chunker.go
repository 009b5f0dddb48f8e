package ingest

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sgupta/personabot/internal/domain/docmodel"
)

// Limits for the splitter
const maxChunkSize = 1000 // characters
const chunkOverlap = 150  // generous overlap helps semantic continuity

// splitTextIntoChunks cuts text at the best available separator, carrying
// a tail of the previous chunk forward as overlap.
func splitTextIntoChunks(text string, limit int, overlap int) []string {
	var chunks []string

	if len(text) <= limit {
		return []string{text}
	}

	// separators ordered from best to worst for semantic meaning
	separators := []string{"\n\n", "\n", ". ", " ", ""}

	var splitChar string
	found := false
	for _, s := range separators {
		if strings.Contains(text, s) {
			splitChar = s
			found = true
			break
		}
	}

	if !found {
		// hard cut if no separator found (rare)
		return []string{text[:limit]}
	}

	parts := strings.Split(text, splitChar)
	var currentChunk strings.Builder

	for _, part := range parts {
		if currentChunk.Len()+len(part)+len(splitChar) > limit {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
			}

			overlapContent := ""
			if currentChunk.Len() > overlap {
				overlapContent = currentChunk.String()[currentChunk.Len()-overlap:]
			}

			currentChunk.Reset()
			currentChunk.WriteString(overlapContent)
		}

		if currentChunk.Len() > 0 && splitChar != "" {
			currentChunk.WriteString(splitChar)
		}
		currentChunk.WriteString(part)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

func getDocType(docPath string) docmodel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docmodel.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return docmodel.DOC
	default:
		return docmodel.ERR
	}
}

// PrepareChunks splits each page and attaches document metadata.
func PrepareChunks(pages []rawPage, doc docmodel.Document, embeddingModel string) []docmodel.DocChunk {
	var allChunks []docmodel.DocChunk

	for _, page := range pages {
		stringChunks := splitTextIntoChunks(page.Content, maxChunkSize, chunkOverlap)

		for i, text := range stringChunks {
			// image-only pages extract to no text and have nothing to embed
			if strings.TrimSpace(text) == "" {
				continue
			}
			allChunks = append(allChunks, docmodel.DocChunk{
				Doc:            doc,
				ChunkId:        uuid.New().String(),
				Text:           text,
				PageNum:        page.Number,
				ChunkPageOrder: i,
				EmbeddingModel: embeddingModel,
			})
		}
	}

	return allChunks
}
