//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// the minimal interface required for test DB operations.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateTestUser returns the existing id when the email is already taken.
func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, role) VALUES ($1, $2, $3) ON CONFLICT (email) DO NOTHING",
		userID, email, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		err = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
		require.NoError(t, err)
	}

	return userID
}

func CountRows(t *testing.T, db DBLike, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT count(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

var (
	truncateOnce sync.Once
	truncateSQL  string
	truncateErr  error
)

// ResetDB empties every application table. The migration bookkeeping table is
// kept so the schema version stays recorded.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	truncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
			SELECT 'public.' || quote_ident(tablename)
			FROM pg_tables
			WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
			ORDER BY tablename`)
		if err != nil {
			truncateErr = err
			return
		}
		tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			truncateErr = err
			return
		}
		if len(tables) == 0 {
			truncateErr = fmt.Errorf("no tables to reset; migrations not applied?")
			return
		}
		truncateSQL = "TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
	})
	if truncateErr != nil {
		return truncateErr
	}
	_, err := pool.Exec(ctx, truncateSQL)
	return err
}
