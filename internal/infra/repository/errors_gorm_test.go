package repository

import (
	"errors"
	"fmt"
	"testing"

	repo "authcore/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateUniqueViolation_PostgresUsesConstraintName(t *testing.T) {
	tests := []struct {
		name   string
		pgErr  *pgconn.PgError
		target error
	}{
		{
			name: "username whose value mentions email",
			pgErr: &pgconn.PgError{
				Code:           pgUniqueViolation,
				ConstraintName: "idx_users_username",
				Detail:         "Key (username)=(email_fan) already exists.",
			},
			target: repo.ErrDuplicateUsername,
		},
		{
			name: "email whose value mentions external_id",
			pgErr: &pgconn.PgError{
				Code:           pgUniqueViolation,
				ConstraintName: "idx_users_email",
				Detail:         "Key (email)=(external_id@x.com) already exists.",
			},
			target: repo.ErrDuplicateEmail,
		},
		{
			name: "external id",
			pgErr: &pgconn.PgError{
				Code:           pgUniqueViolation,
				ConstraintName: "idx_users_external_id",
				Detail:         "Key (external_id)=(username) already exists.",
			},
			target: repo.ErrDuplicateExternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateUniqueViolation(fmt.Errorf("insert: %w", tt.pgErr))

			assert.ErrorIs(t, err, tt.target)
			for _, other := range []error{repo.ErrDuplicateEmail, repo.ErrDuplicateUsername, repo.ErrDuplicateExternal} {
				if other != tt.target {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestTranslateUniqueViolation_PostgresUnknownConstraintPassesThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_refresh_tokens_token_hash", Detail: "Key (token_hash)=(email) already exists."}

	err := translateUniqueViolation(pgErr)
	assert.Same(t, pgErr, err)

	other := &pgconn.PgError{Code: "23503", ConstraintName: "idx_users_email"}
	assert.Same(t, other, translateUniqueViolation(other))
}

func TestTranslateUniqueViolation_SQLiteUsesColumn(t *testing.T) {
	err := translateUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))
	assert.ErrorIs(t, err, repo.ErrDuplicateUsername)
	assert.NotErrorIs(t, err, repo.ErrDuplicateEmail)

	err = translateUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"))
	assert.ErrorIs(t, err, repo.ErrDuplicateEmail)

	raw := errors.New("constraint failed: UNIQUE constraint failed: refresh_tokens.token_hash (2067)")
	assert.Same(t, raw, translateUniqueViolation(raw))

	assert.NoError(t, translateUniqueViolation(nil))
}
