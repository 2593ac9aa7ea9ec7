package analytics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/invoices"
	"invoice-backend/internal/shared/server/middleware"
	"invoice-backend/internal/shared/server/respond"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", middleware.RequireLogin(), h.dashboard)
	g := rg.Group("/analytics", middleware.RequireLogin())
	g.GET("", h.summary)
	g.GET("/export.csv", h.exportCSV)
	g.GET("/export.xlsx", h.exportXLSX)
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.Svc.Dashboard(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		invoices.RespondError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"totalAmountProcessed": d.TotalAmount,
		"totalInvoices":        d.TotalInvoices,
		"recentInvoices":       invoices.ToResponses(d.Recent),
	})
}

func (h *Handler) summary(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, gin.H{
		"totalAmountProcessed": s.TotalAmount,
		"totalInvoices":        s.TotalInvoices,
		"topSpendingVendor":    s.TopVendor,
		"vendorSpending":       s.VendorSpending,
		"scatterPlotData":      s.Scatter,
		"recentInvoices":       invoices.ToResponses(s.Recent),
	})
}

func (h *Handler) exportCSV(c *gin.Context) {
	s, ok := h.loadForExport(c)
	if !ok {
		return
	}
	respond.Attachment(c, "analytics.csv", "text/csv; charset=utf-8", CSV(s))
}

func (h *Handler) exportXLSX(c *gin.Context) {
	s, ok := h.loadForExport(c)
	if !ok {
		return
	}
	data, err := XLSX(s)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build workbook", nil)
		return
	}
	respond.Attachment(c, "analytics.xlsx", xlsxMime, data)
}

func (h *Handler) loadForExport(c *gin.Context) (Summary, bool) {
	s, ok := h.load(c)
	if !ok {
		return Summary{}, false
	}
	if s.TotalInvoices == 0 {
		respond.Error(c, http.StatusNotFound, "no_data", ErrNoData.Error(), nil)
		return Summary{}, false
	}
	return s, true
}

func (h *Handler) load(c *gin.Context) (Summary, bool) {
	s, err := h.Svc.Summary(c.Request.Context(), middleware.UserIDFromContext(c), c.Query("range"), c.Query("vendor"))
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "range must be one of 30, 90, 365, all", []map[string]string{
				{"field": "range", "issue": "invalid"},
			})
			return Summary{}, false
		}
		invoices.RespondError(c, err)
		return Summary{}, false
	}
	return s, true
}
