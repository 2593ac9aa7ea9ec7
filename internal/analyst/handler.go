package analyst

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/llm"
	"invoice-backend/internal/shared/metrics"
	"invoice-backend/internal/shared/server/middleware"
	"invoice-backend/internal/shared/server/respond"
	"invoice-backend/internal/shared/telemetry"
)

// RecordSource loads the records a question is answered over.
type RecordSource interface {
	Records(ctx context.Context, userID string) ([]Record, error)
}

type Handler struct {
	Client   *Client
	Records  RecordSource
	inFlight *middleware.InFlight
}

func NewHandler(client *Client, records RecordSource) *Handler {
	return &Handler{Client: client, Records: records, inFlight: middleware.NewInFlight()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/analyst", middleware.RequireLogin())
	g.POST("/ask", middleware.OnePerUser(h.inFlight, "question"), h.ask)
	g.GET("/suggestions", h.suggestions)
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	records, err := h.Records.Records(c.Request.Context(), userID)
	if err != nil {
		metrics.IncAnalystQuery("storage_error")
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to load invoices", nil)
		return
	}

	answer, err := h.Client.Ask(c.Request.Context(), req.Question, records)
	if err != nil {
		outcome := writeAskError(c, err)
		metrics.IncAnalystQuery(outcome)
		telemetry.Warn("analyst.failed", map[string]any{"user_id": userID, "outcome": outcome, "records": len(records)})
		return
	}

	metrics.IncAnalystQuery("answered")
	telemetry.Info("analyst.answered", map[string]any{
		"user_id": userID,
		"records": len(records),
		"refused": answer == RefusalSentence,
	})
	respond.OK(c, gin.H{"answer": answer})
}

func (h *Handler) suggestions(c *gin.Context) {
	respond.OK(c, gin.H{"questions": SuggestedQuestions()})
}

// writeAskError responds for err and returns the metrics outcome label.
func writeAskError(c *gin.Context, err error) string {
	switch {
	case errors.Is(err, ErrNoData):
		respond.Error(c, http.StatusNotFound, "no_data", "Save some invoices before asking questions", nil)
		return "no_data"
	case errors.Is(err, ErrEmptyQuestion):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), []map[string]string{
			{"field": "question", "issue": "required"},
		})
		return "empty_question"
	case errors.Is(err, ErrEmptyAnswer):
		respond.Error(c, http.StatusBadGateway, "empty_answer", "The model returned an empty answer", nil)
		return "empty_answer"
	case llm.IsCircuitOpen(err):
		respond.Unavailable(c, "model_unavailable", "The model is temporarily unavailable", llm.RetryAfter)
		return "circuit_open"
	default:
		respond.Error(c, http.StatusBadGateway, "model_unavailable", "The model request failed", nil)
		return "model_unavailable"
	}
}
