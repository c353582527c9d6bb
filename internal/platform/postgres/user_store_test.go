package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/phrazzld/receipt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPostgresUserStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	user, err := domain.NewUser("Owner@Example.com", "password123")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID.String(), "owner@example.com", sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), user))

	assert.Empty(t, user.Password, "plaintext is cleared after hashing")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))
}

func TestPostgresUserStore_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	user, err := domain.NewUser("owner@example.com", "password123")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(anyArgs(6)...).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: constraintUsersEmail})

	err = s.Create(context.Background(), user)
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestPostgresUserStore_Create_Invalid(t *testing.T) {
	db, _ := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "bad"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	id := uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "email", "hashed_password", "is_active", "created_at", "updated_at"}).
		AddRow(id.String(), "owner@example.com", "$2a$hash", true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("owner@example.com").
		WillReturnRows(rows)

	u, err := s.GetByEmail(context.Background(), "  OWNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "$2a$hash", u.HashedPassword)
	assert.True(t, u.IsActive)
}

func TestPostgresUserStore_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := s.GetByID(context.Background(), uuid.New())
	assert.Nil(t, u)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPostgresUserStore_GetByID_DBError(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	dbErr := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WillReturnError(dbErr)

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, store.IsNotFoundError(err))
}

func TestNewPostgresUserStore_NilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresUserStore(nil, 0, nil) })
}
