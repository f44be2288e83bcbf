package user

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agromarket/internal/dbmysql"
)

// staleAfter is how long a device may stay silent before push delivery
// stops targeting it.
const staleAfter = 30 * 24 * time.Hour

// DeviceRepository stores push registrations. It satisfies the fan-out
// pipeline's device lookup seam.
type DeviceRepository interface {
	CreateOrUpdate(ctx context.Context, userID, deviceToken, platform string) error
	ActiveByUserID(ctx context.Context, userID string) ([]*dbmysql.Device, error)
	DeleteToken(ctx context.Context, deviceToken string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

// CreateOrUpdate upserts on device_token so a token that moves between
// accounts follows its latest owner.
func (r *deviceRepository) CreateOrUpdate(ctx context.Context, userID, deviceToken, platform string) error {
	now := time.Now()
	device := &dbmysql.Device{
		DeviceToken:  deviceToken,
		UserID:       userID,
		Platform:     platform,
		RegisteredAt: now,
		LastActive:   now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "last_active"}),
	}).Create(device).Error
}

func (r *deviceRepository) ActiveByUserID(ctx context.Context, userID string) ([]*dbmysql.Device, error) {
	var devices []*dbmysql.Device
	cutoff := time.Now().Add(-staleAfter)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND last_active > ?", userID, cutoff).
		Order("last_active DESC").
		Find(&devices).Error
	return devices, err
}

func (r *deviceRepository) DeleteToken(ctx context.Context, deviceToken string) error {
	return r.db.WithContext(ctx).Delete(&dbmysql.Device{}, "device_token = ?", deviceToken).Error
}

func (r *deviceRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Delete(&dbmysql.Device{}, "user_id = ?", userID).Error
}
