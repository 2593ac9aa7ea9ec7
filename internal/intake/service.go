package intake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"invoice-backend/internal/documents"
	"invoice-backend/internal/extraction"
	"invoice-backend/internal/ingest"
	"invoice-backend/internal/llm"
	"invoice-backend/internal/review"
	sharedauth "invoice-backend/internal/shared/auth"
	"invoice-backend/internal/shared/metrics"
	"invoice-backend/internal/shared/telemetry"
)

// Extractor turns one input into a repaired result.
type Extractor interface {
	Extract(ctx context.Context, in extraction.Input) (extraction.Result, error)
}

// Archiver keeps the original upload.
type Archiver interface {
	Archive(ctx context.Context, userID string, doc ingest.UploadedDocument, contentKind string) (documents.Document, error)
}

// Service runs the upload-to-review workflow and the review commands.
type Service struct {
	Extractor Extractor
	Archive   Archiver
	Reviews   *review.Store
	Saver     review.Saver
	// TextOnly makes PDFs go through text extraction before the model call.
	TextOnly bool
	now      func() time.Time
}

func NewService(extractor Extractor, gen llm.Generator, archive Archiver, reviews *review.Store, saver review.Saver) *Service {
	return &Service{
		Extractor: extractor,
		Archive:   archive,
		Reviews:   reviews,
		Saver:     saver,
		TextOnly:  !llm.AcceptsAttachments(gen),
		now:       time.Now,
	}
}

// Outcome is what a successful extraction hands back to the caller.
type Outcome struct {
	Result      extraction.Result
	Warnings    []string
	ContentKind string
	DocumentID  string
	State       review.State
}

// Snapshot is a copy of a review session safe to serialize.
type Snapshot struct {
	State  review.State
	Result extraction.Result
	Draft  review.Draft
}

// ExtractUpload normalizes and archives doc, extracts it and opens a new
// review cycle for the user. Size and format failures happen before any
// model call.
func (s *Service) ExtractUpload(ctx context.Context, userID string, doc ingest.UploadedDocument) (Outcome, error) {
	start := s.now()
	content, err := ingest.Normalize(ctx, doc)
	if err != nil {
		return Outcome{}, s.fail(userID, "", start, err)
	}
	if s.TextOnly {
		text, err := ingest.AsText(content)
		if err != nil {
			return Outcome{}, s.fail(userID, content.Kind(), start, err)
		}
		content = text
	}

	var documentID string
	if s.Archive != nil {
		archived, err := s.Archive.Archive(ctx, userID, doc, content.Kind())
		if err != nil {
			telemetry.Warn("intake.archive_failed", map[string]any{
				"user_id":   userID,
				"file_name": doc.Name,
				"error":     err.Error(),
			})
		} else {
			documentID = archived.ID
		}
	}

	in, err := extraction.InputFromContent(content)
	if err != nil {
		return Outcome{}, s.fail(userID, content.Kind(), start, err)
	}
	out, err := s.extract(ctx, userID, content.Kind(), in, start)
	out.DocumentID = documentID
	return out, err
}

// ExtractText extracts pasted invoice text.
func (s *Service) ExtractText(ctx context.Context, userID, text string) (Outcome, error) {
	start := s.now()
	if strings.TrimSpace(text) == "" {
		return Outcome{}, s.fail(userID, ingest.KindText, start, extraction.ErrMissingInput)
	}
	return s.extract(ctx, userID, ingest.KindText, extraction.Input{Text: text}, start)
}

func (s *Service) extract(ctx context.Context, userID, kind string, in extraction.Input, start time.Time) (Outcome, error) {
	metrics.IncExtractionStarted(kind)
	result, err := s.Extractor.Extract(ctx, in)
	if err != nil {
		return Outcome{ContentKind: kind}, s.fail(userID, kind, start, err)
	}

	warnings := extraction.SchemaWarnings(result)
	if err := s.Reviews.With(userID, func(sess *review.Session) error {
		sess.Populate(result)
		return nil
	}); err != nil {
		return Outcome{ContentKind: kind}, err
	}

	elapsed := s.now().Sub(start)
	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDuration(elapsed)
	telemetry.Info("extraction.complete", map[string]any{
		"user_id":      userID,
		"content_kind": kind,
		"duration_ms":  elapsed.Milliseconds(),
		"warnings":     len(warnings),
	})
	return Outcome{
		Result:      result.Clone(),
		Warnings:    warnings,
		ContentKind: kind,
		State:       review.StatePopulated,
	}, nil
}

func (s *Service) fail(userID, kind string, start time.Time, err error) error {
	reason := FailureReason(err)
	metrics.IncExtractionFailed(reason)
	telemetry.Warn("extraction.failed", map[string]any{
		"user_id":      userID,
		"content_kind": kind,
		"reason":       reason,
		"duration_ms":  s.now().Sub(start).Milliseconds(),
		"error":        err.Error(),
	})
	return err
}

// FailureReason is the metrics label for an extraction error.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ingest.ErrTooLarge):
		return "too_large"
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ingest.ErrUnreadableDocument):
		return "unreadable_document"
	case errors.Is(err, extraction.ErrMissingInput):
		return "missing_input"
	case errors.Is(err, extraction.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, extraction.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, extraction.ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "other"
	}
}

// Review returns a copy of the user's session, or an empty one when the
// user has none. It does not create a session.
func (s *Service) Review(userID string) (Snapshot, error) {
	snap := Snapshot{State: review.StateEmpty}
	s.Reviews.Peek(userID, func(sess *review.Session) {
		snap = snapshot(sess)
	})
	return snap, nil
}

func (s *Service) BeginEdit(userID string) (Snapshot, error) {
	return s.apply(userID, func(sess *review.Session) error { return sess.BeginEdit() })
}

// SetFields applies edits in key order. Outside Editing the first SetField
// fails, so no partial edit is possible.
func (s *Service) SetFields(userID string, fields map[string]any) (Snapshot, error) {
	if len(fields) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no fields to set", extraction.ErrMissingInput)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.TrimSpace(k) == "" {
			return Snapshot{}, fmt.Errorf("%w: empty field name", extraction.ErrMissingInput)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return s.apply(userID, func(sess *review.Session) error {
		for _, k := range keys {
			if err := sess.SetField(k, fields[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) Cancel(userID string) (Snapshot, error) {
	return s.apply(userID, func(sess *review.Session) error { return sess.Cancel() })
}

// Save persists the draft through the saver for userID. A saved session is
// released from the store, so a later Review reports it as empty.
func (s *Service) Save(ctx context.Context, userID string) (Snapshot, error) {
	ctx = sharedauth.WithUserID(ctx, userID)
	return s.apply(userID, func(sess *review.Session) error { return sess.Save(ctx, s.Saver) })
}

func (s *Service) apply(userID string, fn func(*review.Session) error) (Snapshot, error) {
	var snap Snapshot
	err := s.Reviews.With(userID, func(sess *review.Session) error {
		err := fn(sess)
		snap = snapshot(sess)
		return err
	})
	return snap, err
}

func snapshot(sess *review.Session) Snapshot {
	snap := Snapshot{State: sess.State()}
	if sess.Result() != nil {
		snap.Result = sess.Result().Clone()
	}
	if sess.Draft() != nil {
		snap.Draft = sess.Draft().Clone()
	}
	return snap
}
