package invoices

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Invoice // userId -> invoices in insertion order
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Invoice)}
}

func (r *MemoryRepo) Create(ctx context.Context, inv Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data[inv.UserID] {
		if existing.InvoiceID == inv.InvoiceID {
			return ErrConflict
		}
	}
	r.data[inv.UserID] = append(r.data[inv.UserID], inv)
	return nil
}

// ListByUser returns matching invoices newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, filter Filter) ([]Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Invoice, 0, len(r.data[userID]))
	for _, inv := range r.data[userID] {
		if filter.Since != "" && inv.Date < filter.Since {
			continue
		}
		if filter.Vendor != "" && inv.Vendor != filter.Vendor {
			continue
		}
		out = append(out, inv)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) ListVendors(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	vendors := []string{}
	for _, inv := range r.data[userID] {
		if inv.Vendor == "" {
			continue
		}
		if _, ok := seen[inv.Vendor]; ok {
			continue
		}
		seen[inv.Vendor] = struct{}{}
		vendors = append(vendors, inv.Vendor)
	}
	sort.Strings(vendors)
	return vendors, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[userID]
	for i, inv := range list {
		if inv.ID == id {
			r.data[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.data[userID])
	delete(r.data, userID)
	return n, nil
}

func (r *MemoryRepo) UpdateNotificationEmail(ctx context.Context, userID, email string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[userID]
	for i := range list {
		list[i].NotificationEmail = email
	}
	return len(list), nil
}

func (r *MemoryRepo) LatestNotificationEmail(ctx context.Context, userID string) (string, error) {
	latest, err := r.ListByUser(ctx, userID, Filter{Limit: 1})
	if err != nil || len(latest) == 0 {
		return "", err
	}
	return latest[0].NotificationEmail, nil
}

var _ Repo = (*MemoryRepo)(nil)
