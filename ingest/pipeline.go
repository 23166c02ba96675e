package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rolerag/model"
	"rolerag/store"
	"rolerag/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoExtractableText is the data error for a batch where no supplied
// document yielded any usable text. Nothing gets indexed in that case.
var ErrNoExtractableText = errors.New("no text could be extracted from the provided documents")

// SavedFile is one uploaded document already written to disk.
type SavedFile struct {
	Path string
	Name string
}

// Pipeline turns an uploaded file set into the session's vector collection:
// extract, classify once per document, chunk, then embed and index the whole
// accumulated set in a single shot. Partial indexing is never left behind:
// the collection is either fully populated or not written at all.
type Pipeline struct {
	extractor  TextExtractor
	classifier model.Classifier
	embedder   model.Embedder
	vectors    store.VectorStorer
	logger     *zap.Logger

	chunkSize    int
	chunkOverlap int
}

func New(
	extractor TextExtractor,
	classifier model.Classifier,
	embedder model.Embedder,
	vectors store.VectorStorer,
	logger *zap.Logger,
	chunkSize, chunkOverlap int,
) *Pipeline {
	return &Pipeline{
		extractor:    extractor,
		classifier:   classifier,
		embedder:     embedder,
		vectors:      vectors,
		logger:       logger,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest processes the batch for one session. Unsupported formats are
// skipped; unreadable files and classifier failures abort the whole batch.
func (p *Pipeline) Ingest(ctx context.Context, sessionID uuid.UUID, files []SavedFile) error {
	var accumulated []types.Chunk

	docNum := 0
	for _, file := range files {
		docNum++

		text, supported, err := p.extractor.Extract(ctx, file.Path, file.Name)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", file.Name, err)
		}
		if !supported {
			p.logger.Info("skipping unsupported format", zap.String("file", file.Name))
			continue
		}
		if strings.TrimSpace(text) == "" {
			p.logger.Info("skipping document with no text", zap.String("file", file.Name))
			continue
		}

		label, score, err := p.classifier.Classify(ctx, text)
		if err != nil {
			return fmt.Errorf("classifying %s: %w", file.Name, err)
		}

		docTypeScore := score
		meta := types.ChunkMeta{
			SourceFile:   file.Name,
			DocType:      label,
			DocTypeScore: &docTypeScore,
		}

		for chunkIdx, content := range SplitText(text, p.chunkSize, p.chunkOverlap) {
			accumulated = append(accumulated, types.Chunk{
				SessionID: sessionID,
				ID:        fmt.Sprintf("doc%d_chunk%d", docNum, chunkIdx+1),
				Content:   content,
				Meta:      meta,
			})
		}

		p.logger.Info("document processed",
			zap.String("file", file.Name),
			zap.String("doc_type", label),
			zap.Float64("doc_type_score", score))
	}

	if len(accumulated) == 0 {
		return ErrNoExtractableText
	}

	texts := make([]string, len(accumulated))
	for i, chunk := range accumulated {
		texts[i] = chunk.Content
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	for i := range accumulated {
		accumulated[i].Embedding = vectors[i]
	}

	if err := p.vectors.ReplaceCollection(ctx, sessionID, accumulated); err != nil {
		return fmt.Errorf("indexing chunks: %w", err)
	}

	p.logger.Info("session indexed",
		zap.String("session_id", sessionID.String()),
		zap.Int("chunks", len(accumulated)))
	return nil
}
