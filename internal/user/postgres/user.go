package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frahmantamala/crm-assistant/internal/user"
	"github.com/jmoiron/sqlx"
)

type userRow struct {
	user.Summary
	AllowedCategories sql.NullString `db:"allowed_categories"`
}

func NewPostgresRepo(db *sqlx.DB) user.Repository {
	return &pgRepo{db: db}
}

type pgRepo struct {
	db *sqlx.DB
}

const selectUsers = `SELECT id, username, email, role, is_active, allowed_categories FROM users`

func (p *pgRepo) ListUsers(ctx context.Context) ([]user.Summary, error) {
	var rows []userRow
	if err := p.db.SelectContext(ctx, &rows, selectUsers+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list users query: %w", err)
	}

	out := make([]user.Summary, 0, len(rows))
	for _, row := range rows {
		s, err := row.toSummary()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *pgRepo) GetByID(ctx context.Context, id int64) (*user.Summary, error) {
	var row userRow
	query := p.db.Rebind(selectUsers + " WHERE id = ?")
	if err := p.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	s, err := row.toSummary()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r userRow) toSummary() (user.Summary, error) {
	s := r.Summary
	if r.AllowedCategories.Valid && r.AllowedCategories.String != "" {
		if err := json.Unmarshal([]byte(r.AllowedCategories.String), &s.AllowedCategories); err != nil {
			return user.Summary{}, fmt.Errorf("invalid allowed_categories for user %d: %w", s.ID, err)
		}
	}
	return s, nil
}
