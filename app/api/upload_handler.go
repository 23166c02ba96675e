package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rolerag/ingest"
	"rolerag/store"
	"rolerag/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ingestor is the ingestion pipeline as the upload handler sees it.
type Ingestor interface {
	Ingest(ctx context.Context, sessionID uuid.UUID, files []ingest.SavedFile) error
}

type UploadHandler struct {
	sessions  store.SessionStorer
	locks     *store.SessionLocks
	ingestor  Ingestor
	uploadDir string
	logger    *zap.Logger
}

func NewUploadHandler(sessions store.SessionStorer, locks *store.SessionLocks, ingestor Ingestor, uploadDir string, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		sessions:  sessions,
		locks:     locks,
		ingestor:  ingestor,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// HandleUpload creates a session from a role plus a set of documents: saves
// the files, runs the ingestion pipeline once, and records the session in
// the ledger. Any failure removes the saved files; no orphaned copies
// survive a failed upload.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	role := c.FormValue("role")
	if role == "" {
		return NewValidationError(map[string]string{"role": "failed on 'required' tag"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return ErrBadRequest()
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return NewValidationError(map[string]string{"files": "failed on 'required' tag"})
	}

	sessionID := uuid.New()

	var saved []ingest.SavedFile
	var filenames []string
	for _, fileHeader := range uploads {
		path := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", sessionID, filepath.Base(fileHeader.Filename)))
		if err := c.SaveFile(fileHeader, path); err != nil {
			h.removeSaved(saved)
			h.logger.Error("saving upload failed", zap.String("file", fileHeader.Filename), zap.Error(err))
			return ErrProcessing()
		}
		saved = append(saved, ingest.SavedFile{Path: path, Name: fileHeader.Filename})
		filenames = append(filenames, fileHeader.Filename)
	}

	// The indexer clears before it writes; keep queries out until the
	// collection is fully rebuilt.
	unlock := h.locks.Lock(sessionID)
	defer unlock()

	if err := h.ingestor.Ingest(c.Context(), sessionID, saved); err != nil {
		h.removeSaved(saved)
		if errors.Is(err, ingest.ErrNoExtractableText) {
			return NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		h.logger.Error("ingestion failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		return ErrProcessing()
	}

	session := types.Session{
		ID:        sessionID,
		Role:      role,
		Filenames: filenames,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.sessions.CreateSession(c.Context(), session); err != nil {
		h.removeSaved(saved)
		h.logger.Error("session create failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		return ErrProcessing()
	}

	h.logger.Info("session created",
		zap.String("session_id", sessionID.String()),
		zap.String("role", role),
		zap.Int("files", len(filenames)))

	return c.JSON(types.UploadResult{
		SessionID: sessionID.String(),
		Filenames: filenames,
		Role:      role,
	})
}

func (h *UploadHandler) removeSaved(saved []ingest.SavedFile) {
	for _, file := range saved {
		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("could not remove uploaded file", zap.String("path", file.Path), zap.Error(err))
		}
	}
}
