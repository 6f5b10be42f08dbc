package proxies

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for proxy groups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, group *models.ProxyGroup) error
	Get(ctx context.Context, id uuid.UUID) (*models.ProxyGroup, error)
	List(ctx context.Context) ([]models.ProxyGroup, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a proxy group repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, group *models.ProxyGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.ProxyGroup, error) {
	var group models.ProxyGroup
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.ProxyGroup, error) {
	var groups []models.ProxyGroup
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.ProxyGroup{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
