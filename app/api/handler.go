package api

import (
	"context"
	"errors"

	"rolerag/store"
	"rolerag/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Answerer is the per-question pipeline as the handlers see it.
type Answerer interface {
	Answer(ctx context.Context, sessionID uuid.UUID, question, role string) (*types.ChatResponse, error)
}

type ChatHandler struct {
	sessions store.SessionStorer
	locks    *store.SessionLocks
	pipeline Answerer
	logger   *zap.Logger
}

func NewChatHandler(sessions store.SessionStorer, locks *store.SessionLocks, pipeline Answerer, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		locks:    locks,
		pipeline: pipeline,
		logger:   logger,
	}
}

// HandleChat answers one question against a session and appends both turns
// to its history. Every pipeline turn is recorded, including the two
// short-circuit answers (their sources are just empty).
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	sessionID, err := uuid.Parse(params.SessionID)
	if err != nil {
		return ErrInvalidID()
	}

	session, err := h.sessions.GetSession(c.Context(), sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return ErrNotFound(params.SessionID, "session")
	}
	if err != nil {
		h.logger.Error("session lookup failed", zap.Error(err))
		return ErrProcessing()
	}

	// History is read-modify-write and the pipeline reads the session's
	// collection; serialize per session.
	unlock := h.locks.Lock(sessionID)
	defer unlock()

	resp, err := h.pipeline.Answer(c.Context(), sessionID, params.Message, session.Role)
	if err != nil {
		h.logger.Error("question pipeline failed",
			zap.String("session_id", params.SessionID),
			zap.Error(err))
		return ErrProcessing()
	}

	err = h.sessions.AppendTurns(c.Context(), sessionID,
		types.Turn{Role: types.TurnUser, Content: params.Message},
		types.Turn{Role: types.TurnAssistant, Content: resp.Answer, Sources: resp.Sources},
	)
	if err != nil {
		h.logger.Error("history append failed",
			zap.String("session_id", params.SessionID),
			zap.Error(err))
		return ErrProcessing()
	}

	return c.JSON(resp)
}
