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

type familyService struct {
	families store.FamilyRepository
	members  store.MemberRepository
	ids      *utils.UUIDGenerator

	now func() time.Time

	logger *logger.Logger
}

func NewFamilyService(families store.FamilyRepository, members store.MemberRepository, logger *logger.Logger) FamilyService {
	return &familyService{
		families: families,
		members:  members,
		ids:      utils.NewUUIDGenerator(),
		now:      time.Now,
		logger:   logger,
	}
}

func (f *familyService) Create(ctx context.Context, name string) (models.Family, error) {
	if name == "" {
		return models.Family{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoFamilyName)
	}

	family := models.Family{
		ID:           f.ids.Generate(),
		Name:         name,
		LastModified: f.now().UTC(),
		SyncID:       f.ids.Generate(),
	}

	return f.families.Create(ctx, family)
}

func (f *familyService) Get(ctx context.Context, id string) (models.Family, error) {
	family, err := f.families.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Family{}, fmt.Errorf("%w: %s", ErrFamilyNotFound, id)
	}

	return family, err
}

func (f *familyService) List(ctx context.Context) ([]models.Family, error) {
	return f.families.List(ctx)
}

func (f *familyService) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	dependents, err := f.families.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	if dependents > 0 {
		log.Info().
			Str("func", "familyService.Delete").
			Str("family_id", id).
			Int64("dependents", dependents).
			Msg("family deletion rejected")
		return fmt.Errorf("%w: %d live records", ErrFamilyHasDependents, dependents)
	}

	err = f.families.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrFamilyNotFound, id)
	}

	return err
}

func (f *familyService) AddMember(ctx context.Context, member models.FamilyMember) (models.FamilyMember, error) {
	if member.Name == "" {
		return models.FamilyMember{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoName)
	}
	if _, err := f.families.GetByID(ctx, member.FamilyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.FamilyMember{}, fmt.Errorf("%w: %s", ErrFamilyNotFound, member.FamilyID)
		}
		return models.FamilyMember{}, err
	}

	member.ID = f.ids.Generate()
	member.SyncID = f.ids.Generate()
	member.LastModified = f.now().UTC()

	return f.members.Create(ctx, member)
}

func (f *familyService) ListMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	return f.members.ListByFamily(ctx, familyID)
}
