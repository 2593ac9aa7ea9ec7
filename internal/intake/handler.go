package intake

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/extraction"
	"invoice-backend/internal/ingest"
	"invoice-backend/internal/invoices"
	"invoice-backend/internal/llm"
	"invoice-backend/internal/review"
	"invoice-backend/internal/shared/server/middleware"
	"invoice-backend/internal/shared/server/respond"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 * 1024

type Handler struct {
	Svc      *Service
	inFlight *middleware.InFlight
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, inFlight: middleware.NewInFlight()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extractions", middleware.OnePerUser(h.inFlight, "extraction"), h.extract)
	rg.GET("/review", h.review)
	rg.POST("/review/edit", h.beginEdit)
	rg.PATCH("/review/draft", h.setDraft)
	rg.POST("/review/cancel", h.cancel)
	rg.POST("/review/save", middleware.RequireLogin(), h.save)
}

type textRequest struct {
	Text string `json:"text"`
}

func (h *Handler) extract(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var (
		out Outcome
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var doc ingest.UploadedDocument
		doc, err = readMultipart(c)
		if err == nil {
			out, err = h.Svc.ExtractUpload(c.Request.Context(), userID, doc)
		}
	} else {
		var req textRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "expected multipart file or JSON {\"text\"}", nil)
			return
		}
		out, err = h.Svc.ExtractText(c.Request.Context(), userID, req.Text)
	}
	if out.ContentKind != "" {
		c.Set(middleware.ContentKindKey, out.ContentKind)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if out.DocumentID != "" {
		c.Set(middleware.DocumentIDKey, out.DocumentID)
	}
	c.Set(middleware.ReviewStateKey, string(out.State))

	resp := gin.H{
		"result":      out.Result,
		"warnings":    out.Warnings,
		"contentKind": out.ContentKind,
		"reviewState": out.State,
	}
	if out.DocumentID != "" {
		resp["documentId"] = out.DocumentID
	}
	respond.OK(c, resp)
}

// readMultipart reads the "file" part. A declared size over the limit is
// rejected before the body is read; an understated one is caught by the
// body limit or by ReadUpload.
func readMultipart(c *gin.Context) (ingest.UploadedDocument, error) {
	if c.Request.ContentLength > ingest.MaxUploadBytes+multipartOverhead {
		return ingest.UploadedDocument{}, ingest.ErrTooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ingest.MaxUploadBytes+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return ingest.UploadedDocument{}, ingest.ErrTooLarge
		}
		return ingest.UploadedDocument{}, extraction.ErrMissingInput
	}
	if strings.TrimSpace(c.PostForm("text")) != "" {
		return ingest.UploadedDocument{}, errAmbiguous
	}
	if fh.Size > ingest.MaxUploadBytes {
		return ingest.UploadedDocument{}, ingest.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return ingest.UploadedDocument{}, err
	}
	defer f.Close()
	return ingest.ReadUpload(fh.Filename, fh.Header.Get("Content-Type"), f)
}

var errAmbiguous = errors.Join(extraction.ErrMissingInput, errors.New("ambiguous input, both file and text supplied"))

func (h *Handler) review(c *gin.Context) {
	snap, err := h.Svc.Review(middleware.UserIDFromContext(c))
	h.writeSnapshot(c, snap, err)
}

func (h *Handler) beginEdit(c *gin.Context) {
	snap, err := h.Svc.BeginEdit(middleware.UserIDFromContext(c))
	h.writeSnapshot(c, snap, err)
}

func (h *Handler) setDraft(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "expected a JSON object of draft fields", nil)
		return
	}
	snap, err := h.Svc.SetFields(middleware.UserIDFromContext(c), fields)
	h.writeSnapshot(c, snap, err)
}

func (h *Handler) cancel(c *gin.Context) {
	snap, err := h.Svc.Cancel(middleware.UserIDFromContext(c))
	h.writeSnapshot(c, snap, err)
}

func (h *Handler) save(c *gin.Context) {
	snap, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c))
	if inv := snap.Draft.InvoiceID(); inv != "" {
		c.Set(middleware.InvoiceIDKey, inv)
	}
	h.writeSnapshot(c, snap, err)
}

func (h *Handler) writeSnapshot(c *gin.Context, snap Snapshot, err error) {
	c.Set(middleware.ReviewStateKey, string(snap.State))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"state":  snap.State,
		"result": snap.Result,
		"draft":  snap.Draft,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the 5 MB upload limit", nil)
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", err.Error(), gin.H{
			"supportedExtensions": ingest.SupportedExtensions(),
		})
	case errors.Is(err, ingest.ErrUnreadableDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", err.Error(), nil)
	case errors.Is(err, extraction.ErrMissingInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, extraction.ErrEmptyResponse):
		respond.Error(c, http.StatusBadGateway, "empty_response", "The model returned an empty response", nil)
	case errors.Is(err, extraction.ErrMalformedResponse):
		respond.Error(c, http.StatusBadGateway, "malformed_response", "The model response could not be parsed", nil)
	case llm.IsCircuitOpen(err):
		respond.Unavailable(c, "model_unavailable", "The model is temporarily unavailable", llm.RetryAfter)
	case errors.Is(err, extraction.ErrModelUnavailable):
		respond.Error(c, http.StatusBadGateway, "model_unavailable", "The model request failed", nil)
	case errors.Is(err, review.ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case errors.Is(err, invoices.ErrConflict), errors.Is(err, invoices.ErrStorage), errors.Is(err, invoices.ErrInvalidInput):
		invoices.RespondError(c, err)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "request failed", nil)
	}
}
