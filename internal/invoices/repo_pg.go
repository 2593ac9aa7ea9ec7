package invoices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const uniqueViolation = "23505"

const invoiceColumns = `id, user_id, vendor, invoice_id, amount, date, raw_text, notification_email, created_at`

func (r *PGRepo) Create(ctx context.Context, inv Invoice) error {
	const query = `
INSERT INTO invoices (` + invoiceColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(ctx, query,
		inv.ID,
		inv.UserID,
		inv.Vendor,
		inv.InvoiceID,
		inv.Amount,
		inv.Date,
		inv.RawText,
		inv.NotificationEmail,
		inv.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return storageErr("insert invoice", err)
	}
	return nil
}

// ListByUser lists matching invoices ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, filter Filter) ([]Invoice, error) {
	var b strings.Builder
	b.WriteString("SELECT " + invoiceColumns + " FROM invoices WHERE user_id = $1")
	args := []any{userID}
	if filter.Since != "" {
		args = append(args, filter.Since)
		b.WriteString(" AND date >= $" + strconv.Itoa(len(args)))
	}
	if filter.Vendor != "" {
		args = append(args, filter.Vendor)
		b.WriteString(" AND vendor = $" + strconv.Itoa(len(args)))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := r.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, storageErr("list invoices", err)
	}
	defer rows.Close()

	out := []Invoice{}
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.UserID,
			&inv.Vendor,
			&inv.InvoiceID,
			&inv.Amount,
			&inv.Date,
			&inv.RawText,
			&inv.NotificationEmail,
			&inv.CreatedAt,
		); err != nil {
			return nil, storageErr("scan invoice", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list invoices", err)
	}
	return out, nil
}

func (r *PGRepo) ListVendors(ctx context.Context, userID string) ([]string, error) {
	const query = `
SELECT DISTINCT vendor
FROM invoices
WHERE user_id = $1 AND vendor <> ''
ORDER BY vendor`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storageErr("list vendors", err)
	}
	defer rows.Close()

	vendors := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storageErr("scan vendor", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list vendors", err)
	}
	return vendors, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return storageErr("delete invoice", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invoices WHERE user_id = $1`, userID)
	if err != nil {
		return 0, storageErr("delete invoices", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PGRepo) UpdateNotificationEmail(ctx context.Context, userID, email string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE invoices SET notification_email = $1 WHERE user_id = $2`, email, userID)
	if err != nil {
		return 0, storageErr("update notification email", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PGRepo) LatestNotificationEmail(ctx context.Context, userID string) (string, error) {
	const query = `
SELECT notification_email
FROM invoices
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`
	var email string
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", storageErr("load notification email", err)
	}
	return email, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

var _ Repo = (*PGRepo)(nil)
