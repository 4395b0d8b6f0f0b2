package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrRaffleNotFound = errors.New("raffle not found")

type Raffle struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index"`

	Title       string `gorm:"not null"`
	Description string
	CoverURL    string
	TicketPrice float64   `gorm:"not null;default:0"`
	DrawDate    time.Time `gorm:"not null"`
	MaxNumber   int       `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// SoldCount pairs a raffle id with its ticket count for the public catalog.
type SoldCount struct {
	RaffleID uint
	Sold     int
}

type RaffleDAO struct {
	db *gorm.DB
}

func NewRaffleDAO(db *gorm.DB) *RaffleDAO {
	return &RaffleDAO{
		db: db,
	}
}

func (d *RaffleDAO) Insert(ctx context.Context, raffle Raffle) (Raffle, error) {
	result := d.db.WithContext(ctx).Create(&raffle)
	if result.Error != nil {
		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindByID(ctx context.Context, id uint) (Raffle, error) {
	var raffle Raffle

	result := d.db.WithContext(ctx).First(&raffle, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Raffle{}, ErrRaffleNotFound
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindOwned(ctx context.Context, id, userID uint) (Raffle, error) {
	var raffle Raffle

	result := d.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&raffle)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Raffle{}, ErrRaffleNotFound
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindByUserID(ctx context.Context, userID uint) ([]Raffle, error) {
	var raffles []Raffle

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&raffles)
	if result.Error != nil {
		return nil, result.Error
	}

	return raffles, nil
}

func (d *RaffleDAO) FindAll(ctx context.Context) ([]Raffle, error) {
	var raffles []Raffle

	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&raffles)
	if result.Error != nil {
		return nil, result.Error
	}

	return raffles, nil
}

func (d *RaffleDAO) CountSoldPerRaffle(ctx context.Context) ([]SoldCount, error) {
	var counts []SoldCount

	result := d.db.WithContext(ctx).
		Model(&Ticket{}).
		Select("raffle_id, COUNT(*) AS sold").
		Group("raffle_id").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

// Update applies only the keys present in fields, scoped to the owner.
func (d *RaffleDAO) Update(ctx context.Context, id, userID uint, fields map[string]any) error {
	result := d.db.WithContext(ctx).
		Model(&Raffle{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRaffleNotFound
	}

	return nil
}

// Delete removes the raffle with its tickets and media in one transaction.
func (d *RaffleDAO) Delete(ctx context.Context, id, userID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var raffle Raffle
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&raffle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}

			return err
		}

		if err := tx.Where("raffle_id = ?", id).Delete(&Ticket{}).Error; err != nil {
			return err
		}
		if err := tx.Where("raffle_id = ?", id).Delete(&Media{}).Error; err != nil {
			return err
		}

		return tx.Delete(&raffle).Error
	})
}
