package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lembas/internal/ingredient"
)

// Repository handles persistence of exported shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list export repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores an export and returns its id.
func (r *Repository) Save(ctx context.Context, export *Export) (int64, error) {
	itemsJSON, err := json.Marshal(export.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_exports (range_from, range_to, items, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		export.From, export.To, string(itemsJSON), export.Text, export.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list export: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read export id: %w", err)
	}
	export.ID = id
	return id, nil
}

// Get retrieves an export by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Export, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, range_from, range_to, items, text, created_at FROM shopping_exports WHERE id = ?`, id)

	export, err := scanExport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No export found
		}
		return nil, fmt.Errorf("failed to get shopping list export: %w", err)
	}
	return export, nil
}

// ListRecent returns up to limit exports, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Export, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, range_from, range_to, items, text, created_at FROM shopping_exports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping list exports: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		export, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shopping list export: %w", err)
		}
		exports = append(exports, *export)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping list exports: %w", err)
	}
	return exports, nil
}

// Cleanup deletes exports older than the given number of days and returns how many were removed.
func (r *Repository) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_exports WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up shopping list exports: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*Export, error) {
	var (
		export    Export
		itemsJSON string
	)
	if err := s.Scan(&export.ID, &export.From, &export.To, &itemsJSON, &export.Text, &export.CreatedAt); err != nil {
		return nil, err
	}

	var items []ingredient.Quantity
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	export.Items = items
	return &export, nil
}
