package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ppiankov/phonespec/internal/normalize"
)

// BrandRepo persists brands keyed by slug
type BrandRepo struct {
	db DB
}

// NewBrandRepo creates a new brand repository
func NewBrandRepo(db DB) *BrandRepo {
	return &BrandRepo{db: db}
}

// Upsert returns the id of the brand with name's slug, creating it when missing.
// The stored name is only updated when it differs.
func (r *BrandRepo) Upsert(ctx context.Context, name string) (uuid.UUID, error) {
	slug := normalize.Slug(name)

	row, err := queryRow(ctx, r.db, psql.Select("id", "name").From("brands").Where(squirrel.Eq{"slug": slug}))
	if err != nil {
		return uuid.Nil, mapError(err, "brand", slug)
	}

	var id uuid.UUID
	var stored string
	err = row.Scan(&id, &stored)
	switch {
	case err == nil:
		if stored != name {
			update := psql.Update("brands").
				Set("name", name).
				Set("updated_at", squirrel.Expr("now()")).
				Where(squirrel.Eq{"id": id})
			if _, err := exec(ctx, r.db, update); err != nil {
				return uuid.Nil, mapError(err, "brand", slug)
			}
		}
		return id, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return uuid.Nil, mapError(err, "brand", slug)
	}

	insert := psql.Insert("brands").
		Columns("id", "name", "slug").
		Values(uuid.New(), name, slug).
		Suffix("ON CONFLICT (slug) DO UPDATE SET updated_at = brands.updated_at RETURNING id")
	row, err = queryRow(ctx, r.db, insert)
	if err != nil {
		return uuid.Nil, mapError(err, "brand", slug)
	}
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, mapError(err, "brand", slug)
	}
	return id, nil
}
