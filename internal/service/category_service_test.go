package service

import (
	"context"
	"errors"
	"testing"

	"flora-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		input    *model.CategoryInput
		setup    func(repo *MockCategoryRepository)
		wantErr  bool
		wantKind model.ErrorKind
	}{
		{
			name:  "creates with trimmed slug",
			input: &model.CategoryInput{Name: strPtr("Roses"), Slug: strPtr(" roses ")},
			setup: func(repo *MockCategoryRepository) {
				repo.On("SlugExists", ctx, "roses", (*uuid.UUID)(nil)).Return(false, nil)
				repo.On("Create", ctx, mock.MatchedBy(func(c *model.Category) bool {
					return c.Slug == "roses" && c.Name == "Roses" && c.ID != uuid.Nil
				})).Return(nil)
			},
		},
		{
			name:     "missing slug",
			input:    &model.CategoryInput{Name: strPtr("Roses")},
			setup:    func(repo *MockCategoryRepository) {},
			wantErr:  true,
			wantKind: model.KindInvalidInput,
		},
		{
			name:  "slug taken",
			input: &model.CategoryInput{Name: strPtr("Roses"), Slug: strPtr("roses")},
			setup: func(repo *MockCategoryRepository) {
				repo.On("SlugExists", ctx, "roses", (*uuid.UUID)(nil)).Return(true, nil)
			},
			wantErr:  true,
			wantKind: model.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCategoryRepository)
			tt.setup(repo)
			svc := NewCategoryService(repo, zerolog.Nop())

			got, err := svc.Create(ctx, tt.input)

			if tt.wantErr {
				assert.True(t, model.IsKind(err, tt.wantKind), "got %v", err)
				assert.Nil(t, got)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "roses", got.Slug)
			repo.AssertExpectations(t)
		})
	}
}

func TestCategoryService_Lookups(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, zerolog.Nop())

	repo.On("GetByID", ctx, id).Return(&model.Category{ID: id, Slug: "lilies"}, nil)
	repo.On("GetBySlug", ctx, "lilies").Return(&model.Category{ID: id, Slug: "lilies"}, nil)
	repo.On("GetBySlug", ctx, "nope").Return(nil, nil)

	byID, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "lilies", byID.Slug)

	bySlug, err := svc.GetBySlug(ctx, "lilies")
	require.NoError(t, err)
	assert.Equal(t, id, bySlug.ID)

	_, err = svc.GetBySlug(ctx, "nope")
	assert.Equal(t, model.ErrCategoryNotFound, err)
}

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, zerolog.Nop())

	repo.On("List", ctx, mock.MatchedBy(func(f model.CategoryFilter) bool {
		return f.Page.Page == 2 && f.Page.Limit == model.MaxLimit && f.Search == "ro"
	})).Return([]model.Category{{Slug: "roses"}}, int64(101), nil)

	got, err := svc.List(ctx, model.CategoryFilter{Search: "ro", Page: model.Page{Page: 2, Limit: 10000}})

	require.NoError(t, err)
	assert.Len(t, got.Data, 1)
	assert.Equal(t, 2, got.CurrentPage)
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("same slug skips the uniqueness check", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, zerolog.Nop())

		existing := &model.Category{ID: id, Name: "Roses", Slug: "roses"}
		repo.On("GetByID", ctx, id).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		got, err := svc.Update(ctx, id, &model.CategoryInput{Slug: strPtr("roses"), Description: strPtr("Fresh")})

		require.NoError(t, err)
		assert.Equal(t, "Fresh", got.Description)
		repo.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new slug must be free", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, zerolog.Nop())

		repo.On("GetByID", ctx, id).Return(&model.Category{ID: id, Slug: "roses"}, nil)
		repo.On("SlugExists", ctx, "tulips", &id).Return(true, nil)

		_, err := svc.Update(ctx, id, &model.CategoryInput{Slug: strPtr("tulips")})

		assert.True(t, model.IsKind(err, model.KindConflict))
		assert.Equal(t, "Category with slug tulips already exists", err.Error())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing category", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, zerolog.Nop())
		repo.On("GetByID", ctx, id).Return(nil, nil)

		_, err := svc.Update(ctx, id, &model.CategoryInput{Name: strPtr("x")})

		assert.Equal(t, model.ErrCategoryNotFound, err)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, zerolog.Nop())
	repo.On("Delete", ctx, id).Return(nil).Once()
	require.NoError(t, svc.Delete(ctx, id))

	inUse := model.Conflict(model.ErrCodeConflict, "Category still has products")
	repo.On("Delete", ctx, id).Return(inUse).Once()
	err := svc.Delete(ctx, id)
	assert.True(t, errors.Is(err, inUse))
}
