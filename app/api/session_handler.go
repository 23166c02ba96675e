package api

import (
	"errors"

	"rolerag/store"
	"rolerag/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions store.SessionStorer
	logger   *zap.Logger
}

func NewSessionHandler(sessions store.SessionStorer, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

func (h *SessionHandler) HandleListSessions(c *fiber.Ctx) error {
	sessions, err := h.sessions.ListSessions(c.Context())
	if err != nil {
		h.logger.Error("session list failed", zap.Error(err))
		return ErrProcessing()
	}
	if sessions == nil {
		sessions = []types.Session{}
	}
	return c.JSON(sessions)
}

func (h *SessionHandler) HandleHistory(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	history, err := h.sessions.GetHistory(c.Context(), sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return ErrNotFound(sessionID.String(), "session")
	}
	if err != nil {
		h.logger.Error("history lookup failed", zap.Error(err))
		return ErrProcessing()
	}
	if history == nil {
		history = []types.Turn{}
	}
	return c.JSON(history)
}
