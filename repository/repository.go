// Package repository holds the SQL for every table. Functions take the
// querier explicitly (a *sqlx.DB or a *sqlx.Tx) so callers decide the
// transaction boundary.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"fooddelivery/apperr"
)

// QB builds PostgreSQL statements with $n placeholders.
var QB = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// get runs a squirrel select and scans one row into dest. No rows becomes a
// not-found error carrying notFoundMsg.
func get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b squirrel.Sqlizer, notFoundMsg string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return apperr.Internal("build query", err)
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound(notFoundMsg)
		}
		return apperr.FromDB("query failed", err)
	}
	return nil
}

func selectAll(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return apperr.Internal("build query", err)
	}
	if err := sqlx.SelectContext(ctx, q, dest, query, args...); err != nil {
		return apperr.FromDB("query failed", err)
	}
	return nil
}

// exec runs a statement and returns the number of affected rows.
func exec(ctx context.Context, q sqlx.ExecerContext, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, apperr.Internal("build query", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperr.FromDB("statement failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.FromDB("rows affected", err)
	}
	return n, nil
}

// insertReturning runs an INSERT/UPDATE ... RETURNING and scans the row.
func insertReturning(ctx context.Context, q sqlx.QueryerContext, b squirrel.Sqlizer, dest ...interface{}) error {
	query, args, err := b.ToSql()
	if err != nil {
		return apperr.Internal("build query", err)
	}
	if err := q.QueryRowxContext(ctx, query, args...).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Record not found.")
		}
		return apperr.FromDB("write failed", err)
	}
	return nil
}

// prefixed qualifies each column with alias.
func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
