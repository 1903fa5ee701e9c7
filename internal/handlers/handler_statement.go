package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tallybook/statement_backend/internal/apperrors"
	portssvc "github.com/tallybook/statement_backend/internal/core/ports/services"
	"github.com/tallybook/statement_backend/internal/dto"
	"github.com/tallybook/statement_backend/internal/middleware"
)

// statementHandler handles HTTP requests for statement sessions.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
}

func newStatementHandler(ss portssvc.StatementSvcFacade) *statementHandler {
	return &statementHandler{
		statementService: ss,
	}
}

// registerStatementRoutes registers routes related to statement sessions.
func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade) {
	h := newStatementHandler(statementService)

	statements := rg.Group("/statements")
	{
		statements.POST("", h.openStatement)
		statements.GET("/:sessionID", h.getStatement)
		statements.POST("/:sessionID/more", h.loadMore)
		statements.POST("/:sessionID/refresh", h.refreshStatement)
		statements.DELETE("/:sessionID", h.closeStatement)
	}
}

// openStatement godoc
// @Summary Open a statement session
// @Description Opens a statement session for a party, resolves the anchor balance, and loads the newest page of entries
// @Tags statements
// @Accept  json
// @Produce  json
// @Param   statement body dto.OpenStatementRequest true "Statement session parameters"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input format or unknown party"
// @Failure 503 {object} map[string]string "Anchor balance unavailable"
// @Router /statements [post]
func (h *statementHandler) openStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("party_id", req.PartyID))
	logger.Info("Received request to open statement session")

	session, err := h.statementService.Open(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidParty) {
			logger.Warn("Unknown or inactive party for statement", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrAnchorUnavailable) {
			logger.Error("Anchor balance unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Current balance unavailable, try again later"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error opening statement", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to open statement session", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open statement session"})
		}
		return
	}

	logger.Info("Statement session opened", slog.String("session_id", session.SessionID), slog.Int("entry_count", len(session.Entries)))
	c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

// getStatement godoc
// @Summary Get statement session state
// @Description Returns the accumulated entries and loading state of a statement session
// @Tags statements
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /statements/{sessionID} [get]
func (h *statementHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	session, err := h.statementService.Get(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement session not found"})
		} else {
			logger.Error("Failed to get statement session", slog.String("error", err.Error()), slog.String("session_id", sessionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statement session"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// loadMore godoc
// @Summary Load the next statement page
// @Description Fetches the next (older) page for a statement session. A no-op while a fetch is already in flight or when the history is exhausted.
// @Tags statements
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /statements/{sessionID}/more [post]
func (h *statementHandler) loadMore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	logger = logger.With(slog.String("session_id", sessionID))
	logger.Info("Received request to load more statement entries")

	session, err := h.statementService.LoadMore(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement session not found"})
		} else {
			logger.Error("Failed to load more statement entries", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load more entries"})
		}
		return
	}

	logger.Info("Load more completed", slog.Int("entry_count", len(session.Entries)), slog.Bool("has_more", session.HasMore))
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// refreshStatement godoc
// @Summary Refresh a statement session
// @Description Discards all accumulated entries and cursor state and reloads from the newest entry with a fresh anchor balance
// @Tags statements
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 503 {object} map[string]string "Anchor balance unavailable"
// @Router /statements/{sessionID}/refresh [post]
func (h *statementHandler) refreshStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	logger = logger.With(slog.String("session_id", sessionID))
	logger.Info("Received request to refresh statement session")

	session, err := h.statementService.Refresh(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement session not found"})
		} else if errors.Is(err, apperrors.ErrAnchorUnavailable) {
			logger.Error("Anchor balance unavailable on refresh", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Current balance unavailable, try again later"})
		} else {
			logger.Error("Failed to refresh statement session", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh statement session"})
		}
		return
	}

	logger.Info("Statement session refreshed", slog.Int("entry_count", len(session.Entries)))
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// closeStatement godoc
// @Summary Close a statement session
// @Description Tears down a statement session and cancels any in-flight fetch
// @Tags statements
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /statements/{sessionID} [delete]
func (h *statementHandler) closeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	if err := h.statementService.Close(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement session not found"})
		} else {
			logger.Error("Failed to close statement session", slog.String("error", err.Error()), slog.String("session_id", sessionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close statement session"})
		}
		return
	}

	logger.Info("Statement session closed", slog.String("session_id", sessionID))
	c.Status(http.StatusNoContent)
}
