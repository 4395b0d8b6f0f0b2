package repository

import (
	"context"
	"fmt"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/repository/dao"
)

var ErrRaffleNotFound = dao.ErrRaffleNotFound

type RaffleDAO interface {
	Insert(ctx context.Context, raffle dao.Raffle) (dao.Raffle, error)
	FindByID(ctx context.Context, id uint) (dao.Raffle, error)
	FindOwned(ctx context.Context, id, userID uint) (dao.Raffle, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Raffle, error)
	FindAll(ctx context.Context) ([]dao.Raffle, error)
	CountSoldPerRaffle(ctx context.Context) ([]dao.SoldCount, error)
	Update(ctx context.Context, id, userID uint, fields map[string]any) error
	Delete(ctx context.Context, id, userID uint) error
}

type RaffleRepository struct {
	dao RaffleDAO
}

func NewRaffleRepository(dao RaffleDAO) *RaffleRepository {
	return &RaffleRepository{
		dao: dao,
	}
}

func (r *RaffleRepository) Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	created, err := r.dao.Insert(ctx, dao.Raffle{
		UserID:      raffle.UserID,
		Title:       raffle.Title,
		Description: raffle.Description,
		CoverURL:    raffle.CoverURL,
		TicketPrice: raffle.TicketPrice,
		DrawDate:    raffle.DrawDate,
		MaxNumber:   raffle.MaxNumber,
	})
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RaffleRepository) FindByID(ctx context.Context, id uint) (domain.Raffle, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RaffleRepository) FindOwned(ctx context.Context, id, userID uint) (domain.Raffle, error) {
	found, err := r.dao.FindOwned(ctx, id, userID)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.FindOwned -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RaffleRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Raffle, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	raffles := make([]domain.Raffle, 0, len(found))
	for _, f := range found {
		raffles = append(raffles, r.daoToDomain(f))
	}

	return raffles, nil
}

func (r *RaffleRepository) FindAll(ctx context.Context) ([]domain.Raffle, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	raffles := make([]domain.Raffle, 0, len(found))
	for _, f := range found {
		raffles = append(raffles, r.daoToDomain(f))
	}

	return raffles, nil
}

// CountSoldPerRaffle returns ticket counts keyed by raffle id.
func (r *RaffleRepository) CountSoldPerRaffle(ctx context.Context) (map[uint]int, error) {
	counts, err := r.dao.CountSoldPerRaffle(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountSoldPerRaffle -> %w", err)
	}

	sold := make(map[uint]int, len(counts))
	for _, c := range counts {
		sold[c.RaffleID] = c.Sold
	}

	return sold, nil
}

func (r *RaffleRepository) Update(ctx context.Context, id, userID uint, update domain.RaffleUpdate) error {
	fields := map[string]any{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.CoverURL != nil {
		fields["cover_url"] = *update.CoverURL
	}
	if update.TicketPrice != nil {
		fields["ticket_price"] = *update.TicketPrice
	}
	if update.DrawDate != nil {
		fields["draw_date"] = *update.DrawDate
	}
	if update.MaxNumber != nil {
		fields["max_number"] = *update.MaxNumber
	}

	if len(fields) == 0 {
		// Nothing to change; still report not-found for foreign raffles.
		if _, err := r.dao.FindOwned(ctx, id, userID); err != nil {
			return fmt.Errorf("r.dao.FindOwned -> %w", err)
		}

		return nil
	}

	if err := r.dao.Update(ctx, id, userID, fields); err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *RaffleRepository) Delete(ctx context.Context, id, userID uint) error {
	if err := r.dao.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *RaffleRepository) daoToDomain(raffle dao.Raffle) domain.Raffle {
	return domain.Raffle{
		ID:          raffle.ID,
		UserID:      raffle.UserID,
		Title:       raffle.Title,
		Description: raffle.Description,
		CoverURL:    raffle.CoverURL,
		TicketPrice: raffle.TicketPrice,
		DrawDate:    raffle.DrawDate,
		MaxNumber:   raffle.MaxNumber,
		CreatedAt:   raffle.CreatedAt,
		UpdatedAt:   raffle.UpdatedAt,
	}
}
