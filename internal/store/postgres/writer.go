package postgres

import (
	"context"
	"log/slog"

	"github.com/ppiankov/phonespec/internal/model"
)

// Writer upserts normalized records. Brand, product and spec writes for one
// record share a transaction, so a failure leaves no partial product behind.
type Writer struct {
	tx       *TxManager
	brands   *BrandRepo
	products *ProductRepo
	specs    *SpecRepo
	logger   *slog.Logger
}

// NewWriter creates a Writer over db
func NewWriter(db DB, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		tx:       NewTxManager(db),
		brands:   NewBrandRepo(db),
		products: NewProductRepo(db),
		specs:    NewSpecRepo(db),
		logger:   logger,
	}
}

// Write upserts brand, product and spec for rec. Every failure is a *model.WriteError
// naming the step that failed.
func (w *Writer) Write(ctx context.Context, rec *model.NormalizedRecord, validation model.ValidationResult) (*model.WriteOutcome, error) {
	var out model.WriteOutcome
	step := model.StepBrand
	productTouched := false

	err := w.tx.RunInTx(ctx, func(ctx context.Context) error {
		brandID, err := w.brands.Upsert(ctx, rec.Brand)
		if err != nil {
			return err
		}
		out.BrandID = brandID.String()

		step = model.StepProduct
		productID, created, err := w.products.Upsert(ctx, ProductFromRecord(brandID, rec))
		if err != nil {
			return err
		}
		productTouched = true
		out.ProductID = productID.String()
		out.ProductCreated = created

		step = model.StepSpec
		source := model.DataSource{
			Source:     rec.Source,
			URL:        rec.SourceURL,
			ScrapedAt:  rec.FetchedAt,
			Valid:      validation.Valid,
			Validation: validation.Outcomes,
		}
		specCreated, err := w.specs.Upsert(ctx, productID, rec.CategoryDocs(), source)
		if err != nil {
			return err
		}
		out.SpecCreated = specCreated

		step = model.StepCommit
		return nil
	})
	if err != nil {
		werr := &model.WriteError{
			Slug:          rec.Slug,
			Brand:         rec.Brand,
			Step:          step,
			RequiresRerun: productTouched,
			Err:           err,
		}
		w.logger.Error("store write failed",
			slog.String("slug", rec.Slug),
			slog.String("brand", rec.Brand),
			slog.String("step", step),
			slog.Bool("requires_rerun", productTouched),
			slog.String("error", err.Error()))
		return nil, werr
	}

	w.logger.Debug("record stored",
		slog.String("slug", rec.Slug),
		slog.String("product_id", out.ProductID),
		slog.Bool("product_created", out.ProductCreated))
	return &out, nil
}

// ProductImages lists stored products with their current image
func (w *Writer) ProductImages(ctx context.Context) ([]model.ProductImage, error) {
	return w.products.ProductImages(ctx)
}

// UpdateProductImage stores a new image for a product
func (w *Writer) UpdateProductImage(ctx context.Context, productID string, res model.ImageResolution) error {
	return w.products.UpdateImage(ctx, productID, res)
}
