package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"
)

const (
	invoiceCounter = "order_invoice_no"

	orderColumns = `o.id, o.invoice_no, o.name, o.images, o.address, o.price, o.phone_number, o.details,
		o.payment_method, o.user_id, o.status, o.created_at, o.updated_at,
		COALESCE(u.name, ''), COALESCE(u.email, '')`
	orderFrom = ` FROM orders o LEFT JOIN users u ON u.id = o.user_id`
)

type OrderRepository struct {
	DB *sql.DB
}

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var (
		o          models.Order
		images     []byte
		status     string
		ownerName  string
		ownerEmail string
	)
	if err := row.Scan(
		&o.ID,
		&o.InvoiceNo,
		&o.Name,
		&images,
		&o.Address,
		&o.Price,
		&o.PhoneNumber,
		&o.Details,
		&o.PaymentMethod,
		&o.UserID,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
		&ownerName,
		&ownerEmail,
	); err != nil {
		return models.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	o.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &o.Images); err != nil {
			return models.Order{}, err
		}
	}
	o.Owner = &models.OrderOwner{ID: o.UserID, Name: ownerName, Email: ownerEmail}
	return o, nil
}

// Create allocates the next invoice number and inserts the order in one
// transaction. o.InvoiceNo is set on success.
func (r OrderRepository) Create(ctx context.Context, o *models.Order) error {
	images, err := json.Marshal(o.Images)
	if err != nil {
		return domain.InternalError{Msg: "encode images", Err: err}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	invoiceNo, err := nextSequence(ctx, tx, invoiceCounter)
	if err != nil {
		return domain.InternalError{Msg: "allocate invoice number", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, invoice_no, name, images, address, price, phone_number, details,
			payment_method, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, invoiceNo, o.Name, string(images), o.Address, o.Price, o.PhoneNumber, o.Details,
		o.PaymentMethod, o.UserID, string(o.Status), o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return domain.InternalError{Msg: "insert order", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "commit order", Err: err}
	}
	o.InvoiceNo = invoiceNo
	return nil
}

// nextSequence increments a named counter. The upsert row-locks the counter
// until the surrounding transaction ends.
func nextSequence(ctx context.Context, q DBTX, name string) (int64, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO counters (name, seq) VALUES (?, 1) ON DUPLICATE KEY UPDATE seq = seq + 1`, name); err != nil {
		return 0, err
	}
	var seq int64
	if err := q.QueryRowContext(ctx, `SELECT seq FROM counters WHERE name = ?`, name).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r OrderRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.id = ? LIMIT 1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Order{}, domain.NotFoundError{Resource: "order", Err: err}
		}
		return models.Order{}, domain.InternalError{Msg: "query order", Err: err}
	}
	return o, nil
}

// List counts and fetches one page of orders, newest first. Count and fetch
// run outside a transaction and may observe different snapshots.
func (r OrderRepository) List(ctx context.Context, f listing.OrderFilter, p listing.Page) ([]models.Order, int, error) {
	where, args := f.Where()

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*)`+orderFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.InternalError{Msg: "count orders", Err: err}
	}

	query := `SELECT ` + orderColumns + orderFrom + where + ` ORDER BY o.created_at DESC, o.id DESC LIMIT ? OFFSET ?`
	orders, err := r.query(ctx, query, append(args, p.Limit, p.Skip())...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r OrderRepository) ListByOwner(ctx context.Context, userID string) ([]models.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.user_id = ? ORDER BY o.created_at DESC, o.id DESC`, userID)
}

func (r OrderRepository) query(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "list orders", Err: err}
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan order", Err: err}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "list orders", Err: err}
	}
	return orders, nil
}

// Update applies validated assignments and returns the fresh record.
func (r OrderRepository) Update(ctx context.Context, id string, set []domain.Assignment, now time.Time) (models.Order, error) {
	if len(set) > 0 {
		sets := make([]string, 0, len(set)+1)
		args := make([]any, 0, len(set)+2)
		for _, a := range set {
			sets = append(sets, a.Column+"=?")
			args = append(args, a.Value)
		}
		sets = append(sets, "updated_at=?")
		args = append(args, now, id)
		if _, err := r.DB.ExecContext(ctx, `UPDATE orders SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...); err != nil {
			return models.Order{}, domain.InternalError{Msg: "update order", Err: err}
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the order and returns it as it was, so callers can release
// its stored images.
func (r OrderRepository) Delete(ctx context.Context, id string) (models.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return models.Order{}, domain.InternalError{Msg: "delete order", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Order{}, domain.NotFoundError{Resource: "order"}
	}
	return o, nil
}
