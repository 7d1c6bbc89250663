package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flora-kart/internal/model"
	"flora-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) ensureSlugFree(ctx context.Context, slug string, exclude *uuid.UUID) error {
	taken, err := s.categoryRepo.SlugExists(ctx, slug, exclude)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return model.Conflict(model.ErrCodeSlugTaken, "Category with slug %s already exists", slug)
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(*in.Slug)
	in.Slug = &slug
	if err := s.ensureSlugFree(ctx, slug, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &model.Category{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	in.Apply(category)

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID.String()).
		Str("slug", category.Slug).
		Msg("category created")

	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, filter model.CategoryFilter) (model.PageResult[model.Category], error) {
	filter.Page = filter.Page.Normalize()

	categories, total, err := s.categoryRepo.List(ctx, filter)
	if err != nil {
		return model.PageResult[model.Category]{}, fmt.Errorf("failed to list categories: %w", err)
	}

	return model.NewPageResult(categories, total, filter.Page), nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, in *model.CategoryInput) (*model.Category, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		in.Slug = &slug
		if slug != category.Slug {
			if err := s.ensureSlugFree(ctx, slug, &id); err != nil {
				return nil, err
			}
		}
	}

	in.Apply(category)
	category.UpdatedAt = time.Now().UTC()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category updated")

	return category, nil
}

// Delete removes an empty category.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")
	return nil
}
