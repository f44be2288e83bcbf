package favorite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agromarket/internal/dbmysql"
)

type FavoriteRepository interface {
	// Toggle flips the favorite state of (userID, productID) and reports the
	// new state: true when a favorite was created, false when one was removed.
	Toggle(ctx context.Context, userID, productID string) (bool, error)
	IsFavorite(ctx context.Context, userID, productID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*dbmysql.Favorite, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type favoriteRepo struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepo{db: db}
}

func (r *favoriteRepo) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing dbmysql.Favorite
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			First(&existing).Error

		if err == nil {
			created = false
			return tx.Delete(&dbmysql.Favorite{}, "id = ?", existing.ID).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		created = true
		return tx.Create(&dbmysql.Favorite{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProductID: productID,
			CreatedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	return created, nil
}

func (r *favoriteRepo) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&dbmysql.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID string) ([]*dbmysql.Favorite, error) {
	var favorites []*dbmysql.Favorite

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return favorites, nil
}

func (r *favoriteRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Delete(&dbmysql.Favorite{}, "user_id = ?", userID).Error
}
