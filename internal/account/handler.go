package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoice-backend/internal/shared/server/middleware"
	"invoice-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/account", middleware.RequireLogin())
	g.POST("/claim-guest", h.claimGuest)
	g.DELETE("/invoices", h.deleteAll)
	g.GET("/notification-email", h.getNotificationEmail)
	g.PUT("/notification-email", h.putNotificationEmail)
}

type notificationEmailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) deleteAll(c *gin.Context) {
	result, err := h.Svc.DeleteAllData(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to delete invoices", nil)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) getNotificationEmail(c *gin.Context) {
	email, err := h.Svc.NotificationEmail(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to load notification email", nil)
		return
	}
	respond.OK(c, gin.H{"email": email})
}

func (h *Handler) putNotificationEmail(c *gin.Context) {
	var req notificationEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	updated, err := h.Svc.UpdateNotificationEmail(c.Request.Context(), middleware.UserIDFromContext(c), req.Email)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Please enter a valid email address.", []map[string]string{
				{"field": "email", "issue": "invalid"},
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to update notification email", nil)
		return
	}
	respond.OK(c, gin.H{"email": strings.TrimSpace(req.Email), "updatedInvoices": updated})
}

func (h *Handler) claimGuest(c *gin.Context) {
	authedUserID := strings.TrimSpace(middleware.UserIDFromContext(c))

	guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
	if guestID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "missing X-Guest-Id header", []map[string]string{
			{"field": "X-Guest-Id", "issue": "required"},
		})
		return
	}
	if _, err := uuid.Parse(guestID); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid guest id", []map[string]string{
			{"field": "X-Guest-Id", "issue": "invalid"},
		})
		return
	}

	result, err := h.Svc.ClaimGuest(c.Request.Context(), "guest:"+guestID, authedUserID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to claim guest data", nil)
		return
	}
	respond.OK(c, result)
}
