package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Media struct {
	ID       uint `gorm:"primaryKey"`
	RaffleID uint `gorm:"not null;index"`

	URL   string `gorm:"not null"`
	Order int    `gorm:"column:display_order;not null;default:0"`
	Kind  string `gorm:"not null;default:foto"`

	CreatedAt time.Time `gorm:"not null"`
}

type MediaDAO struct {
	db *gorm.DB
}

func NewMediaDAO(db *gorm.DB) *MediaDAO {
	return &MediaDAO{
		db: db,
	}
}

func (d *MediaDAO) Insert(ctx context.Context, media Media) (Media, error) {
	result := d.db.WithContext(ctx).Create(&media)
	if result.Error != nil {
		return Media{}, result.Error
	}

	return media, nil
}

func (d *MediaDAO) FindByRaffleID(ctx context.Context, raffleID uint) ([]Media, error) {
	var media []Media

	result := d.db.WithContext(ctx).
		Where("raffle_id = ?", raffleID).
		Order("display_order ASC, id ASC").
		Find(&media)
	if result.Error != nil {
		return nil, result.Error
	}

	return media, nil
}

func (d *MediaDAO) NextOrder(ctx context.Context, raffleID uint) (int, error) {
	var max *int

	result := d.db.WithContext(ctx).
		Model(&Media{}).
		Where("raffle_id = ?", raffleID).
		Select("MAX(display_order)").
		Scan(&max)
	if result.Error != nil {
		return 0, result.Error
	}
	if max == nil {
		return 0, nil
	}

	return *max + 1, nil
}
