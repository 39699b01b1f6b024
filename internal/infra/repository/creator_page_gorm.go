package repository

import (
	"context"
	"errors"

	"authcore/internal/domain/model"
	repo "authcore/internal/repository"

	"gorm.io/gorm"
)

type creatorPageGormRepository struct {
	db *gorm.DB
}

func NewCreatorPageGormRepository(db *gorm.DB) repo.CreatorPageRepository {
	return &creatorPageGormRepository{db: db}
}

func (r *creatorPageGormRepository) FindByOwnerID(ctx context.Context, ownerID string) (*model.CreatorPage, error) {
	var page model.CreatorPage

	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Take(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

func (r *creatorPageGormRepository) Create(ctx context.Context, page *model.CreatorPage) error {
	return r.db.WithContext(ctx).Create(page).Error
}
