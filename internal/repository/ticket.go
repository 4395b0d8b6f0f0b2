package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/repository/dao"
)

var (
	ErrTicketNotFound    = dao.ErrTicketNotFound
	ErrTicketNumberTaken = dao.ErrTicketNumberTaken
)

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindByRaffleAndNumber(ctx context.Context, raffleID uint, number int) (dao.Ticket, error)
	FindNumbersByRaffle(ctx context.Context, raffleID uint) ([]int, error)
	FindByRaffleID(ctx context.Context, raffleID uint) ([]dao.Ticket, error)
	FindByViewCode(ctx context.Context, code string) (dao.Ticket, error)
	FindByChargeID(ctx context.Context, chargeID string) (dao.Ticket, error)
	MarkPaidByChargeID(ctx context.Context, chargeID string) (int64, error)
	MarkPaidByViewCode(ctx context.Context, code string) (int64, error)
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := r.dao.Insert(ctx, dao.Ticket{
		RaffleID:   ticket.RaffleID,
		Number:     ticket.Number,
		BuyerName:  ticket.BuyerName,
		BuyerTaxID: ticket.BuyerTaxID,
		BuyerPhone: ticket.BuyerPhone,
		AmountPaid: ticket.AmountPaid,
		ViewCode:   ticket.ViewCode,
		Status:     string(ticket.Status),
		ChargeID:   ticket.ChargeID,
	})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TicketRepository) Exists(ctx context.Context, raffleID uint, number int) (bool, error) {
	_, err := r.dao.FindByRaffleAndNumber(ctx, raffleID, number)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, dao.ErrTicketNotFound) {
		return false, nil
	}

	return false, fmt.Errorf("r.dao.FindByRaffleAndNumber -> %w", err)
}

func (r *TicketRepository) FindNumbersByRaffle(ctx context.Context, raffleID uint) ([]int, error) {
	numbers, err := r.dao.FindNumbersByRaffle(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindNumbersByRaffle -> %w", err)
	}

	return numbers, nil
}

func (r *TicketRepository) FindByRaffleID(ctx context.Context, raffleID uint) ([]domain.Ticket, error) {
	found, err := r.dao.FindByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRaffleID -> %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(found))
	for _, f := range found {
		tickets = append(tickets, r.daoToDomain(f))
	}

	return tickets, nil
}

func (r *TicketRepository) FindByViewCode(ctx context.Context, code string) (domain.Ticket, error) {
	found, err := r.dao.FindByViewCode(ctx, code)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByViewCode -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TicketRepository) FindByChargeID(ctx context.Context, chargeID string) (domain.Ticket, error) {
	found, err := r.dao.FindByChargeID(ctx, chargeID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByChargeID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TicketRepository) MarkPaidByChargeID(ctx context.Context, chargeID string) (int64, error) {
	updated, err := r.dao.MarkPaidByChargeID(ctx, chargeID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.MarkPaidByChargeID -> %w", err)
	}

	return updated, nil
}

func (r *TicketRepository) MarkPaidByViewCode(ctx context.Context, code string) (int64, error) {
	updated, err := r.dao.MarkPaidByViewCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("r.dao.MarkPaidByViewCode -> %w", err)
	}

	return updated, nil
}

func (r *TicketRepository) daoToDomain(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:         t.ID,
		RaffleID:   t.RaffleID,
		Number:     t.Number,
		BuyerName:  t.BuyerName,
		BuyerTaxID: t.BuyerTaxID,
		BuyerPhone: t.BuyerPhone,
		AmountPaid: t.AmountPaid,
		ViewCode:   t.ViewCode,
		Status:     domain.PaymentStatus(t.Status),
		ChargeID:   t.ChargeID,
		ReservedAt: t.CreatedAt,
	}
}
