package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ppiankov/phonespec/internal/model"
)

// Product is the products row written for one record
type Product struct {
	BrandID          uuid.UUID
	Name             string
	Model            string
	Slug             string
	ImageURL         string
	ImageConstructed bool // A constructed guess never replaces a stored image
	Images           []string
	ReleaseDate      *time.Time
	PriceUSD         *int
	MarketStatus     string
}

// ProductFromRecord maps a normalized record to a products row
func ProductFromRecord(brandID uuid.UUID, rec *model.NormalizedRecord) Product {
	images := rec.Image.URLs()
	if images == nil {
		images = []string{}
	}
	return Product{
		BrandID:          brandID,
		Name:             rec.Name,
		Model:            rec.Model,
		Slug:             rec.Slug,
		ImageURL:         rec.Image.URL,
		ImageConstructed: rec.Image.Tier == model.ImageTierConstructed,
		Images:           images,
		ReleaseDate:      rec.ReleaseDate,
		PriceUSD:         rec.PriceUSD,
		MarketStatus:     rec.MarketStatus,
	}
}

// ProductRepo persists products keyed by slug
type ProductRepo struct {
	db DB
}

// NewProductRepo creates a new product repository
func NewProductRepo(db DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// IDBySlug returns the id of the product with slug
func (r *ProductRepo) IDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	row, err := queryRow(ctx, r.db, psql.Select("id").From("products").Where(squirrel.Eq{"slug": slug}))
	if err != nil {
		return uuid.Nil, mapError(err, "product", slug)
	}
	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, mapError(err, "product", slug)
	}
	return id, nil
}

// Upsert updates the product in place or inserts it. It reports whether a row was created.
// Unknown price or release date never erase stored values.
func (r *ProductRepo) Upsert(ctx context.Context, p Product) (uuid.UUID, bool, error) {
	id, err := r.IDBySlug(ctx, p.Slug)
	switch {
	case err == nil:
		return id, false, r.update(ctx, id, p)
	case !errors.Is(err, model.ErrNotFound):
		return uuid.Nil, false, err
	}
	return r.insert(ctx, p)
}

func (r *ProductRepo) update(ctx context.Context, id uuid.UUID, p Product) error {
	keepImage := squirrel.Expr("CASE WHEN ? AND image_url <> '' THEN image_url ELSE ? END", p.ImageConstructed, p.ImageURL)
	keepImages := squirrel.Expr("CASE WHEN ? AND image_url <> '' THEN images ELSE ? END", p.ImageConstructed, p.Images)

	update := psql.Update("products").
		Set("brand_id", p.BrandID).
		Set("name", p.Name).
		Set("model", p.Model).
		Set("image_url", keepImage).
		Set("images", keepImages).
		Set("release_date", squirrel.Expr("COALESCE(?, release_date)", p.ReleaseDate)).
		Set("price_usd", squirrel.Expr("COALESCE(?, price_usd)", p.PriceUSD)).
		Set("market_status", p.MarketStatus).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	tag, err := exec(ctx, r.db, update)
	if err != nil {
		return mapError(err, "product", p.Slug)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "product", p.Slug)
	}
	return nil
}

// insert guards against a concurrent insert of the same slug
func (r *ProductRepo) insert(ctx context.Context, p Product) (uuid.UUID, bool, error) {
	insert := psql.Insert("products").
		Columns("id", "brand_id", "name", "model", "slug", "image_url", "images", "release_date", "price_usd", "market_status").
		Values(uuid.New(), p.BrandID, p.Name, p.Model, p.Slug, p.ImageURL, p.Images, p.ReleaseDate, p.PriceUSD, p.MarketStatus).
		Suffix(`ON CONFLICT (slug) DO UPDATE SET
			brand_id = EXCLUDED.brand_id,
			name = EXCLUDED.name,
			model = EXCLUDED.model,
			image_url = CASE WHEN ? AND products.image_url <> '' THEN products.image_url ELSE EXCLUDED.image_url END,
			images = CASE WHEN ? AND products.image_url <> '' THEN products.images ELSE EXCLUDED.images END,
			release_date = COALESCE(EXCLUDED.release_date, products.release_date),
			price_usd = COALESCE(EXCLUDED.price_usd, products.price_usd),
			market_status = EXCLUDED.market_status,
			updated_at = now()
		RETURNING id, (xmax = 0) AS inserted`, p.ImageConstructed, p.ImageConstructed)

	row, err := queryRow(ctx, r.db, insert)
	if err != nil {
		return uuid.Nil, false, mapError(err, "product", p.Slug)
	}
	var id uuid.UUID
	var inserted bool
	if err := row.Scan(&id, &inserted); err != nil {
		return uuid.Nil, false, mapError(err, "product", p.Slug)
	}
	return id, inserted, nil
}

// ProductImages lists every stored product with its brand and current image
func (r *ProductRepo) ProductImages(ctx context.Context) ([]model.ProductImage, error) {
	query := psql.Select("p.id", "b.name", "p.slug", "p.name", "p.image_url").
		From("products p").
		Join("brands b ON b.id = p.brand_id").
		OrderBy("p.slug")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product images query: %w", err)
	}
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "product", "images")
	}
	defer rows.Close()

	var out []model.ProductImage
	for rows.Next() {
		var id uuid.UUID
		var p model.ProductImage
		if err := rows.Scan(&id, &p.Brand, &p.Slug, &p.Name, &p.ImageURL); err != nil {
			return nil, mapError(err, "product", "images")
		}
		p.ProductID = id.String()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "product", "images")
	}
	return out, nil
}

// UpdateImage stores a resolved image for a product
func (r *ProductRepo) UpdateImage(ctx context.Context, productID string, res model.ImageResolution) error {
	id, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("product %s: %w", productID, model.ErrValidation)
	}

	update := psql.Update("products").
		Set("image_url", res.URL).
		Set("images", res.URLs()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	tag, err := exec(ctx, r.db, update)
	if err != nil {
		return mapError(err, "product", productID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "product", productID)
	}
	return nil
}
