package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ppiankov/phonespec/internal/model"
)

// SpecRepo persists per-category spec documents, one row per product
type SpecRepo struct {
	db DB
}

// NewSpecRepo creates a new spec repository
func NewSpecRepo(db DB) *SpecRepo {
	return &SpecRepo{db: db}
}

// Upsert writes the categories present in docs and appends source to data_sources.
// Categories absent from docs keep their stored value. It reports whether a row was created.
func (r *SpecRepo) Upsert(ctx context.Context, productID uuid.UUID, docs map[model.Category]map[string]any, source model.DataSource) (bool, error) {
	key := productID.String()

	cols, vals, err := categoryValues(docs)
	if err != nil {
		return false, fmt.Errorf("spec %s: %w", key, err)
	}
	sourceJSON, err := json.Marshal([]model.DataSource{source})
	if err != nil {
		return false, fmt.Errorf("spec %s: encode data source: %w", key, err)
	}

	row, err := queryRow(ctx, r.db, psql.Select("id").From("product_specs").Where(squirrel.Eq{"product_id": productID}))
	if err != nil {
		return false, mapError(err, "spec", key)
	}
	var id uuid.UUID
	err = row.Scan(&id)
	switch {
	case err == nil:
		update := psql.Update("product_specs").
			Set("data_sources", squirrel.Expr("data_sources || ?::jsonb", string(sourceJSON))).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id})
		for i, col := range cols {
			update = update.Set(col, vals[i])
		}
		if _, err := exec(ctx, r.db, update); err != nil {
			return false, mapError(err, "spec", key)
		}
		return false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return false, mapError(err, "spec", key)
	}

	conflict := make([]string, 0, len(cols)+2)
	for _, col := range cols {
		conflict = append(conflict, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	conflict = append(conflict,
		"data_sources = product_specs.data_sources || EXCLUDED.data_sources",
		"updated_at = now()")

	values := append([]any{uuid.New(), productID}, vals...)
	values = append(values, squirrel.Expr("?::jsonb", string(sourceJSON)))

	insert := psql.Insert("product_specs").
		Columns(append(append([]string{"id", "product_id"}, cols...), "data_sources")...).
		Values(values...).
		Suffix("ON CONFLICT (product_id) DO UPDATE SET " + strings.Join(conflict, ", ") + " RETURNING (xmax = 0) AS inserted")

	row, err = queryRow(ctx, r.db, insert)
	if err != nil {
		return false, mapError(err, "spec", key)
	}
	var inserted bool
	if err := row.Scan(&inserted); err != nil {
		return false, mapError(err, "spec", key)
	}
	return inserted, nil
}

// categoryValues encodes present categories in storage column order
func categoryValues(docs map[model.Category]map[string]any) ([]string, []any, error) {
	var cols []string
	var vals []any
	for _, cat := range model.Categories {
		doc, ok := docs[cat]
		if !ok || len(doc) == 0 {
			continue
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s: %w", cat, err)
		}
		cols = append(cols, string(cat))
		vals = append(vals, squirrel.Expr("?::jsonb", string(data)))
	}
	return cols, vals, nil
}
