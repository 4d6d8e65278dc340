package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const maxPageSize = 500

// limitClause returns an empty clause when size is zero so callers fetch every row.
func limitClause(page, size int) string {
	if size <= 0 {
		return ""
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)
}

func orderClause(allowed map[string]string, sortBy, order, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = fallback
	}
	order = strings.ToUpper(order)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, order)
}

// deleteByID hard deletes one row and reports sql.ErrNoRows when nothing matched.
func deleteByID(ctx context.Context, db *sqlx.DB, table, id string) error {
	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows affected: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func existsByID(ctx context.Context, db *sqlx.DB, table, id string) (bool, error) {
	var exists bool
	if err := db.GetContext(ctx, &exists, fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", table), id); err != nil {
		return false, fmt.Errorf("check %s exists: %w", table, err)
	}
	return exists, nil
}
