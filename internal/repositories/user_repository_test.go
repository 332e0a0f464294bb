package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "phone", "role", "blocked", "created_at", "updated_at"}

func newUserRepo(t *testing.T) (sqlmock.Sqlmock, UserRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, UserRepository{DB: db}
}

func TestUserRepositoryFindPrincipal_ExcludesPasswordHash(t *testing.T) {
	mock, repo := newUserRepo(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, email, phone, role, blocked, created_at, updated_at FROM users WHERE id = ? LIMIT 1")).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(ownerID, "Ann", "ann@example.com", "", "admin", false, now, now))

	p, err := repo.FindPrincipal(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, p.ID)
	assert.Equal(t, domain.RoleAdmin, p.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindPrincipal_NotFound(t *testing.T) {
	mock, repo := newUserRepo(t)

	mock.ExpectQuery(`FROM users WHERE id = \?`).WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.FindPrincipal(context.Background(), ownerID)
	assert.True(t, domain.IsNotFound(err))
}

func TestUserRepositoryFindByEmail_ReadsHash(t *testing.T) {
	mock, repo := newUserRepo(t)

	now := time.Now()
	mock.ExpectQuery(`, password_hash FROM users WHERE email = \?`).WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(append(userRowColumns, "password_hash")).
			AddRow(ownerID, "Ann", "ann@example.com", "", "user", true, now, now, "$2a$hash"))

	u, err := repo.FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$hash", u.PasswordHash)
	assert.True(t, u.Blocked)
}

func TestUserRepositoryCreate_DuplicateEmail(t *testing.T) {
	mock, repo := newUserRepo(t)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), models.User{ID: ownerID, Email: "ann@example.com", Role: domain.RoleUser})
	assert.True(t, domain.IsConflict(err))
}

func TestUserRepositoryList_SearchesRegularUsers(t *testing.T) {
	mock, repo := newUserRepo(t)

	f := listing.BuildUserFilter("ann")
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM users WHERE role = ? AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?)")).
		WithArgs("user", "%ann%", "%ann%", "%ann%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs("user", "%ann%", "%ann%", "%ann%", 10, 0).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(ownerID, "Ann", "ann@example.com", "0800", "user", false, now, now))

	users, total, err := repo.List(context.Background(), f, listing.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDelete_NotFound(t *testing.T) {
	mock, repo := newUserRepo(t)

	mock.ExpectExec(`DELETE FROM users`).WithArgs(ownerID).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.True(t, domain.IsNotFound(repo.Delete(context.Background(), ownerID)))
}
