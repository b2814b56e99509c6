package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/store"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

type categoryService struct {
	categories store.CategoryRepository
	families   store.FamilyRepository
	ids        *utils.UUIDGenerator

	now func() time.Time

	logger *logger.Logger
}

func NewCategoryService(categories store.CategoryRepository, families store.FamilyRepository, logger *logger.Logger) CategoryService {
	return &categoryService{
		categories: categories,
		families:   families,
		ids:        utils.NewUUIDGenerator(),
		now:        time.Now,
		logger:     logger,
	}
}

func (c *categoryService) Create(ctx context.Context, category models.Category) (models.Category, error) {
	if category.Name == "" {
		return models.Category{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoName)
	}
	if _, err := c.families.GetByID(ctx, category.FamilyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Category{}, fmt.Errorf("%w: %s", ErrFamilyNotFound, category.FamilyID)
		}
		return models.Category{}, err
	}

	// Honor a valid client-assigned id so an offline-created record and
	// its CRUD twin stay the same record.
	if !utils.ValidUUID(category.ID) {
		category.ID = c.ids.Generate()
	}
	category.SyncID = c.ids.Generate()
	category.LastModified = c.now().UTC()
	category.IsDeleted = false

	if err := c.categories.Upsert(ctx, category); err != nil {
		return models.Category{}, err
	}

	return category, nil
}

func (c *categoryService) Get(ctx context.Context, id string) (models.Category, error) {
	category, err := c.categories.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Category{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	return category, err
}

func (c *categoryService) ListByFamily(ctx context.Context, familyID string) ([]models.Category, error) {
	return c.categories.ListByFamily(ctx, familyID)
}

func (c *categoryService) Update(ctx context.Context, category models.Category) (models.Category, error) {
	existing, err := c.categories.GetByID(ctx, category.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Category{}, fmt.Errorf("%w: %s", ErrRecordNotFound, category.ID)
		}
		return models.Category{}, err
	}

	// Envelope fields are immutable on update.
	category.FamilyID = existing.FamilyID
	category.SyncID = existing.SyncID
	category.LastModified = c.now().UTC()

	if err = c.categories.Upsert(ctx, category); err != nil {
		return models.Category{}, err
	}

	return category, nil
}

func (c *categoryService) Delete(ctx context.Context, id string) error {
	err := c.categories.Tombstone(ctx, id, c.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	return err
}
