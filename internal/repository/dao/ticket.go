package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketNumberTaken = errors.New("ticket number already reserved")
)

type Ticket struct {
	ID       uint `gorm:"primaryKey"`
	RaffleID uint `gorm:"not null;uniqueIndex:idx_tickets_raffle_number"`
	Number   int  `gorm:"not null;uniqueIndex:idx_tickets_raffle_number"`

	BuyerName  string `gorm:"not null"`
	BuyerTaxID string `gorm:"not null"`
	BuyerPhone string
	AmountPaid float64

	ViewCode string `gorm:"unique"`
	Status   string `gorm:"not null;default:PENDING"`
	ChargeID string `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

// Insert persists a ticket. The composite unique index on (raffle_id, number)
// is the authoritative reservation guard: a concurrent insert losing the race
// surfaces here as ErrTicketNumberTaken.
func (d *TicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	result := d.db.WithContext(ctx).Create(&ticket)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "idx_tickets_raffle_number"`) {
			return Ticket{}, ErrTicketNumberTaken
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByRaffleAndNumber(ctx context.Context, raffleID uint, number int) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).
		Where("raffle_id = ? AND number = ?", raffleID, number).
		First(&ticket)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindNumbersByRaffle(ctx context.Context, raffleID uint) ([]int, error) {
	var numbers []int

	result := d.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("raffle_id = ?", raffleID).
		Order("number ASC").
		Pluck("number", &numbers)
	if result.Error != nil {
		return nil, result.Error
	}

	return numbers, nil
}

func (d *TicketDAO) FindByRaffleID(ctx context.Context, raffleID uint) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).
		Where("raffle_id = ?", raffleID).
		Order("number ASC").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

func (d *TicketDAO) FindByViewCode(ctx context.Context, code string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Where("view_code = ?", code).First(&ticket)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByChargeID(ctx context.Context, chargeID string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Where("charge_id = ?", chargeID).First(&ticket)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

// MarkPaidByChargeID flips a ticket to PAID and reports how many rows matched.
// Matching zero rows is not an error, which keeps webhook delivery idempotent.
func (d *TicketDAO) MarkPaidByChargeID(ctx context.Context, chargeID string) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("charge_id = ?", chargeID).
		Update("status", "PAID")
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (d *TicketDAO) MarkPaidByViewCode(ctx context.Context, code string) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("view_code = ?", code).
		Update("status", "PAID")
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
