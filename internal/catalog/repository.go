package catalog

import (
	"context"

	"gorm.io/gorm"

	"agromarket/internal/dbmysql"
)

type ProductRepository interface {
	Create(ctx context.Context, product *dbmysql.Product) error
	ByID(ctx context.Context, id string) (*dbmysql.Product, error)
	ByAuthor(ctx context.Context, authorID string) ([]*dbmysql.Product, error)
	List(ctx context.Context, limit int) ([]*dbmysql.Product, error)
	Delete(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *dbmysql.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) ByID(ctx context.Context, id string) (*dbmysql.Product, error) {
	var product dbmysql.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ByAuthor(ctx context.Context, authorID string) ([]*dbmysql.Product, error) {
	var products []*dbmysql.Product
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) List(ctx context.Context, limit int) ([]*dbmysql.Product, error) {
	var products []*dbmysql.Product
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Delete removes the product together with every favorite pointing at it, so
// favorite listings never dangle.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&dbmysql.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbmysql.Product{}, "id = ?", id).Error
	})
}

func (r *productRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&dbmysql.Product{}).
			Where("author_id = ?", authorID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("product_id IN ?", ids).Delete(&dbmysql.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Where("author_id = ?", authorID).Delete(&dbmysql.Product{}).Error
	})
}
