package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for the curated catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.CuratedProduct) error
	CreateBatch(ctx context.Context, products []models.CuratedProduct) error
	Get(ctx context.Context, id uuid.UUID) (*models.CuratedProduct, error)
	List(ctx context.Context, params listProductsParams) ([]models.CuratedProduct, *pagination.Cursor, error)
	All(ctx context.Context) ([]models.CuratedProduct, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listProductsParams struct {
	Limit    int
	Cursor   *pagination.Cursor
	Priority string
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, product *models.CuratedProduct) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) CreateBatch(ctx context.Context, products []models.CuratedProduct) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&products).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.CuratedProduct, error) {
	var product models.CuratedProduct
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listProductsParams) ([]models.CuratedProduct, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.CuratedProduct{})
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var products []models.CuratedProduct
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	if len(products) > normalized {
		next := products[normalized]
		products = products[:normalized]
		return products, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return products, nil, nil
}

func (r *repositoryImpl) All(ctx context.Context) ([]models.CuratedProduct, error) {
	var products []models.CuratedProduct
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.CuratedProduct{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CuratedProduct{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
