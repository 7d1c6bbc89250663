package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"flora-kart/internal/media"
	"flora-kart/internal/model"
	"flora-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	variantRepo  repository.VariantRepository
	images       media.ImageStore
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	variantRepo repository.VariantRepository,
	images media.ImageStore,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		variantRepo:  variantRepo,
		images:       images,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

func productSlugTaken(slug string) *model.DomainError {
	return model.Conflict(model.ErrCodeSlugTaken, "Product with slug %s already exists", slug)
}

func (s *productService) rollback(ctx context.Context, tx pgx.Tx) {
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
	}
}

func (s *productService) requireCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (s *productService) ensureSlugFree(ctx context.Context, slug string, exclude *uuid.UUID) error {
	taken, err := s.productRepo.SlugExists(ctx, slug, exclude)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return productSlugTaken(slug)
	}
	return nil
}

// Create inserts a product and bumps its category's product count in one transaction.
func (s *productService) Create(ctx context.Context, in *model.ProductInput) (product *model.Product, err error) {
	if err = in.ValidateCreate(); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(*in.Slug)
	in.Slug = &slug

	if err = s.ensureSlugFree(ctx, slug, nil); err != nil {
		return nil, err
	}
	if err = s.requireCategory(ctx, *in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product = &model.Product{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	in.Apply(product)

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	if err = s.productRepo.Create(ctx, tx, product); err != nil {
		return nil, err
	}
	if err = s.categoryRepo.AdjustProductCount(ctx, tx, product.CategoryID, 1); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("slug", product.Slug).
		Msg("product created")

	return s.GetByID(ctx, product.ID)
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, filter model.ProductFilter) (model.PageResult[model.Product], error) {
	filter.Page = filter.Page.Normalize()
	if filter.Sort.Field == "" {
		filter.Sort = model.DefaultProductSort
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return model.PageResult[model.Product]{}, model.InvalidInput("minPrice cannot exceed maxPrice")
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return model.PageResult[model.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int64("total", total).
		Int("page", filter.Page.Page).
		Msg("retrieved products")

	return model.NewPageResult(products, total, filter.Page), nil
}

// Update applies in to the product. Moving it to another category adjusts both counters.
func (s *productService) Update(ctx context.Context, id uuid.UUID, in *model.ProductInput) (product *model.Product, err error) {
	if err = in.ValidateUpdate(); err != nil {
		return nil, err
	}

	product, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCategory := product.CategoryID

	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		in.Slug = &slug
		if slug != product.Slug {
			if err = s.ensureSlugFree(ctx, slug, &id); err != nil {
				return nil, err
			}
		}
	}

	moved := in.CategoryID != nil && *in.CategoryID != oldCategory
	if moved {
		if err = s.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	in.Apply(product)
	product.UpdatedAt = time.Now().UTC()

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	if err = s.productRepo.Update(ctx, tx, product); err != nil {
		return nil, err
	}

	if moved {
		if err = s.categoryRepo.AdjustProductCount(ctx, tx, oldCategory, -1); err != nil {
			return nil, err
		}
		if err = s.categoryRepo.AdjustProductCount(ctx, tx, product.CategoryID, 1); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Bool("category_moved", moved).
		Msg("product updated")

	return s.GetByID(ctx, id)
}

// Delete removes the product and its variants and decrements the category count.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	variants, err := s.variantRepo.DeleteByProduct(ctx, tx, id)
	if err != nil {
		return err
	}
	if err = s.productRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err = s.categoryRepo.AdjustProductCount(ctx, tx, product.CategoryID, -1); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Int64("variants_removed", variants).
		Msg("product deleted")

	return nil
}

func (s *productService) GetWithVariants(ctx context.Context, id uuid.UUID) (*model.ProductWithVariants, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	variants, err := s.variantRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	return &model.ProductWithVariants{Product: product, Variants: variants}, nil
}

func (s *productService) ListVariants(ctx context.Context, productID uuid.UUID) ([]model.Variant, error) {
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	variants, err := s.variantRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	return variants, nil
}

func (s *productService) CreateVariant(ctx context.Context, productID uuid.UUID, in *model.VariantInput) (*model.Variant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	variant := &model.Variant{
		ID:            uuid.New(),
		ProductID:     productID,
		Size:          in.Size,
		Variant:       in.Variant,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.variantRepo.Create(ctx, variant); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Str("variant_id", variant.ID.String()).
		Msg("variant created")

	return variant, nil
}

func (s *productService) UploadImage(ctx context.Context, id uuid.UUID, contentType string, body io.Reader) (*model.Product, error) {
	if _, ok := media.Extension(contentType); !ok {
		return nil, model.InvalidInput("unsupported image type: %s", contentType)
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	key, err := media.NewKey(id.String(), contentType)
	if err != nil {
		return nil, model.InvalidInput("%s", err.Error())
	}

	url, err := s.images.Put(ctx, key, contentType, body)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to store product image")
		return nil, fmt.Errorf("failed to store product image: %w", err)
	}

	product, err := s.productRepo.SetImage(ctx, id, url)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Str("image", url).
		Msg("product image uploaded")

	return product, nil
}
