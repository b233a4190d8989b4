package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// AvatarSlots is one remembered handshake result.
type AvatarSlots struct {
	AvatarID  string `gorm:"primaryKey"`
	Slots     int    `gorm:"not null"`
	UpdatedAt time.Time
}

func (AvatarSlots) TableName() string { return "avatar_slots" }

type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects with dsn and migrates the avatar_slots table.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&AvatarSlots{}); err != nil {
		return nil, fmt.Errorf("migrate avatar_slots: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context, avatarID string) (int, error) {
	var row AvatarSlots
	err := s.db.WithContext(ctx).First(&row, "avatar_id = ?", avatarID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load avatar %q: %w", avatarID, err)
	}
	return row.Slots, nil
}

func (s *GormStore) Save(ctx context.Context, avatarID string, slots int) error {
	row := AvatarSlots{AvatarID: avatarID, Slots: slots}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "avatar_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"slots", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save avatar %q: %w", avatarID, err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
