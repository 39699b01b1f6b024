package repository

import (
	"authcore/internal/domain/model"
	"context"
)

// クリエイターページの保存
type CreatorPageRepository interface {
	// 無ければ nil, nil
	FindByOwnerID(ctx context.Context, ownerID string) (*model.CreatorPage, error)
	Create(ctx context.Context, page *model.CreatorPage) error
}
