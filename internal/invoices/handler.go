package invoices

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/shared/server/middleware"
	"invoice-backend/internal/shared/server/respond"
	"invoice-backend/internal/shared/util"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches invoice routes. All of them need a signed-in user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/invoices", middleware.RequireLogin())
	g.GET("", h.list)
	g.GET("/vendors", h.vendors)
	g.GET("/export.csv", h.exportCSV)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid limit", []map[string]string{
				{"field": "limit", "issue": "invalid"},
			})
			return
		}
		limit = min(parsed, 500)
	}

	list, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), Filter{Limit: limit})
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, gin.H{"invoices": ToResponses(list)})
}

func (h *Handler) vendors(c *gin.Context) {
	vendors, err := h.Svc.Vendors(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, gin.H{"vendors": vendors})
}

func (h *Handler) delete(c *gin.Context) {
	c.Set(middleware.InvoiceIDKey, c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportCSV(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), Filter{})
	if err != nil {
		RespondError(c, err)
		return
	}
	if len(list) == 0 {
		respond.Error(c, http.StatusNotFound, "no_data", "no invoices to export", nil)
		return
	}
	rows := make([][]string, 0, len(list))
	for _, inv := range list {
		rows = append(rows, csvRow(inv))
	}
	respond.Attachment(c, "invoices.csv", "text/csv; charset=utf-8", []byte(util.QuotedCSV(csvHeaders, rows)))
}

// RespondError maps invoice errors onto the JSON error envelope.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "duplicate_invoice", "This invoice ID has already been saved.", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "invoice not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "storage_error", "invoice storage failed", nil)
	}
}
