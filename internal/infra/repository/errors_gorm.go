package repository

import (
	"errors"
	"fmt"
	"strings"

	repo "authcore/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgresの unique_violation
const pgUniqueViolation = "23505"

// 制約名 → リポジトリのエラー。model.User のuniqueIndex名と揃える
var constraintErrors = map[string]error{
	"idx_users_email":       repo.ErrDuplicateEmail,
	"idx_users_username":    repo.ErrDuplicateUsername,
	"idx_users_external_id": repo.ErrDuplicateExternal,
}

// SQLiteはインデックス名ではなく「テーブル.カラム」を返す
var columnErrors = map[string]error{
	"users.email":       repo.ErrDuplicateEmail,
	"users.username":    repo.ErrDuplicateUsername,
	"users.external_id": repo.ErrDuplicateExternal,
}

const sqliteUniquePrefix = "unique constraint failed: "

// 一意制約違反をリポジトリのエラーに変換する。
// 事前チェックをすり抜けた同時登録もここで拾う。
// Detailには衝突した値が入るので見ない。
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return err
		}
		if target, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %v", target, err)
		}
		return err
	}

	// SQLite: "UNIQUE constraint failed: users.email (2067)"
	msg := strings.ToLower(err.Error())
	i := strings.Index(msg, sqliteUniquePrefix)
	if i < 0 {
		return err
	}
	column := strings.Fields(msg[i+len(sqliteUniquePrefix):])
	if len(column) == 0 {
		return err
	}
	if target, ok := columnErrors[strings.TrimSuffix(column[0], ",")]; ok {
		return fmt.Errorf("%w: %v", target, err)
	}
	return err
}
