package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"bad request", NewBadRequest("bad"), "BAD_REQUEST", http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"not found", NewNotFound("missing"), "NOT_FOUND", http.StatusNotFound},
		{"conflict", NewConflict("taken"), "CONFLICT", http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var de *DomainError
			require.ErrorAs(t, tc.err, &de)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError(cause)

	de := ToDomainError(err)
	assert.Equal(t, "Internal Server Error", de.Message)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert user: %w", unique)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestToDomainError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("passes through domain errors", func(t *testing.T) {
		err := NewConflict("taken")
		de := ToDomainError(fmt.Errorf("create plan: %w", err))
		assert.Equal(t, http.StatusConflict, de.HTTPStatus)
		assert.Equal(t, "taken", de.Message)
	})

	t.Run("maps missing rows to not found", func(t *testing.T) {
		de := ToDomainError(pgx.ErrNoRows)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("maps unique violations to conflict", func(t *testing.T) {
		de := ToDomainError(&pgconn.PgError{Code: "23505"})
		assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	})

	t.Run("unknown errors collapse to internal", func(t *testing.T) {
		de := ToDomainError(errors.New("dial tcp: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.Equal(t, "Internal Server Error", de.Message)
	})
}
