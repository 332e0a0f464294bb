package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"
)

// userColumns never includes password_hash; only FindByEmail reads it.
const userColumns = `id, name, email, phone, role, blocked, created_at, updated_at`

type UserRepository struct {
	DB *sql.DB
}

func scanUser(row interface{ Scan(...any) error }, extra ...any) (models.User, error) {
	var (
		u    models.User
		role string
	)
	dest := []any{&u.ID, &u.Name, &u.Email, &u.Phone, &role, &u.Blocked, &u.CreatedAt, &u.UpdatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, role, blocked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role), u.Blocked, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return domain.ConflictError{Resource: "user", Msg: "Email already exists", Err: err}
		}
		return domain.InternalError{Msg: "insert user", Err: err}
	}
	return nil
}

// EmailExists is the pre-insert uniqueness probe used by registration.
func (r UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n); err != nil {
		return false, domain.InternalError{Msg: "check email", Err: err}
	}
	return n > 0, nil
}

// FindByEmail returns the user including its password hash, for login only.
func (r UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE email = ? LIMIT 1`, email)
	var hash string
	u, err := scanUser(row, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.InternalError{Msg: "query user", Err: err}
	}
	u.PasswordHash = hash
	return u, nil
}

func (r UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.InternalError{Msg: "query user", Err: err}
	}
	return u, nil
}

// FindPrincipal resolves a credential subject for the auth gate.
func (r UserRepository) FindPrincipal(ctx context.Context, id string) (domain.Principal, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Principal{}, err
	}
	return u.Principal(), nil
}

func (r UserRepository) List(ctx context.Context, f listing.UserFilter, p listing.Page) ([]models.User, int, error) {
	where, args := f.Where()

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.InternalError{Msg: "count users", Err: err}
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.Limit, p.Skip())...)
	if err != nil {
		return nil, 0, domain.InternalError{Msg: "list users", Err: err}
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, domain.InternalError{Msg: "scan user", Err: err}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.InternalError{Msg: "list users", Err: err}
	}
	return users, total, nil
}

// Update applies validated assignments and returns the fresh record.
func (r UserRepository) Update(ctx context.Context, id string, set []domain.Assignment, now time.Time) (models.User, error) {
	if len(set) > 0 {
		sets := make([]string, 0, len(set)+1)
		args := make([]any, 0, len(set)+2)
		for _, a := range set {
			sets = append(sets, a.Column+"=?")
			args = append(args, a.Value)
		}
		sets = append(sets, "updated_at=?")
		args = append(args, now, id)
		if _, err := r.DB.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...); err != nil {
			if isDuplicate(err) {
				return models.User{}, domain.ConflictError{Resource: "user", Msg: "Email already exists", Err: err}
			}
			return models.User{}, domain.InternalError{Msg: "update user", Err: err}
		}
	}
	return r.GetByID(ctx, id)
}

func (r UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "delete user", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "delete user", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}
