package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "username", "hashed_password", "fname", "lname", "email"}

func strPtr(s string) *string { return &s }

func TestCreateUser_Success(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, hashed_password)")).
		WithArgs("Test", "hash").
		WillReturnResult(sqlmock.NewResult(5, 1))

	u, err := s.CreateUser(context.Background(), "Test", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, "Test", u.Username)
}

func TestCreateUser_DuplicateIsConflict(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Test", "hash").
		WillReturnError(duplicateEntry())

	_, err := s.CreateUser(context.Background(), "Test", "hash")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestGetUser_NotFound(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = ?")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := s.GetUser(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetUser_NullableProfileFields(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = ?")).
		WithArgs("Test").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Test", "hash", nil, "Last", nil))

	u, err := s.GetUser(context.Background(), "Test")
	require.NoError(t, err)
	assert.Nil(t, u.FName)
	require.NotNil(t, u.LName)
	assert.Equal(t, "Last", *u.LName)
	assert.Nil(t, u.Email)
}

func TestGetUserByID(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(4, "renamed", "hash", nil, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols))

	u, err := s.GetUserByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "renamed", u.Username)

	_, err = s.GetUserByID(context.Background(), 5)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListUsers(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "a", "h1", nil, nil, nil).
			AddRow(2, "b", "h2", "B", nil, "b@x.y"))

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "b", users[1].Username)
}

func TestUpdateUser_PartialPatchKeepsOtherFields(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = ? FOR UPDATE")).
		WithArgs("update").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "update", "hash", "TestFirstName", "TestLastName", "test@test.com"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username = ?, fname = ?, lname = ?, email = ? WHERE id = ?")).
		WithArgs("update", "TestFirstName", "TestLastName", "partialUpdate@test.com", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := s.UpdateUser(context.Background(), "update", models.UserPatch{Email: strPtr("partialUpdate@test.com")})
	require.NoError(t, err)
	assert.Equal(t, "partialUpdate@test.com", *u.Email)
	assert.Equal(t, "TestFirstName", *u.FName)
}

func TestUpdateUser_MissingUserRollsBack(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("Test").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectRollback()

	_, err := s.UpdateUser(context.Background(), "Test", models.UserPatch{FName: strPtr("x")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateUser_RenameCollisionIsConflict(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("Test").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Test", "hash", nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnError(duplicateEntry())
	mock.ExpectRollback()

	_, err := s.UpdateUser(context.Background(), "Test", models.UserPatch{Username: strPtr("taken")})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestDeleteUser(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE username = ?")).
		WithArgs("Test").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE username = ?")).
		WithArgs("Test").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteUser(context.Background(), "Test"))
	assert.True(t, errors.Is(s.DeleteUser(context.Background(), "Test"), apperr.ErrNotFound))
}
