package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"invoice-backend/internal/ingest"
	"invoice-backend/internal/shared/storage/object"
	"invoice-backend/internal/shared/telemetry"
)

// Service archives uploads in object storage and records their metadata.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
	now   func() time.Time
}

func NewService(store object.ObjectStore, repo DocumentsRepo) *Service {
	return &Service{Store: store, Repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Archive stores the original upload and records how it was normalized.
func (s *Service) Archive(ctx context.Context, userID string, doc ingest.UploadedDocument, contentKind string) (Document, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(doc.Name) == "" {
		return Document{}, ErrInvalidInput
	}

	obj, err := s.Store.Put(ctx, userID, doc.Name, doc.NormalizedMimeType(), doc.Data)
	if err != nil {
		return Document{}, err
	}

	record := Document{
		ID:              uuid.NewString(),
		UserID:          userID,
		FileName:        doc.Name,
		MimeType:        obj.MimeType,
		SizeBytes:       obj.SizeBytes,
		StorageProvider: s.Store.Provider(),
		StorageKey:      obj.Key,
		ContentKind:     contentKind,
		CreatedAt:       s.now(),
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		if delErr := s.Store.Delete(ctx, obj.Key); delErr != nil {
			telemetry.Warn("documents.orphan", map[string]any{"storage_key": obj.Key, "error": delErr.Error()})
		}
		return Document{}, err
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// objectDeleteConcurrency bounds parallel object-store deletes in DeleteAll.
const objectDeleteConcurrency = 4

// DeleteAll removes every archived document of the user, rows first and
// then the stored objects. Object deletion failures are logged, not returned.
func (s *Service) DeleteAll(ctx context.Context, userID string) (int, error) {
	docs, err := s.Repo.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	var g errgroup.Group
	g.SetLimit(objectDeleteConcurrency)
	for _, d := range docs {
		key := d.StorageKey
		g.Go(func() error {
			if err := s.Store.Delete(ctx, key); err != nil {
				telemetry.Warn("documents.delete_object_failed", map[string]any{"storage_key": key, "error": err.Error()})
			}
			return nil
		})
	}
	_ = g.Wait()
	return len(docs), nil
}
