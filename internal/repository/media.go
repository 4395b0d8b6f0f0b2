package repository

import (
	"context"
	"fmt"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/repository/dao"
)

type MediaDAO interface {
	Insert(ctx context.Context, media dao.Media) (dao.Media, error)
	FindByRaffleID(ctx context.Context, raffleID uint) ([]dao.Media, error)
	NextOrder(ctx context.Context, raffleID uint) (int, error)
}

type MediaRepository struct {
	dao MediaDAO
}

func NewMediaRepository(dao MediaDAO) *MediaRepository {
	return &MediaRepository{
		dao: dao,
	}
}

func (r *MediaRepository) Create(ctx context.Context, media domain.Media) (domain.Media, error) {
	created, err := r.dao.Insert(ctx, dao.Media{
		RaffleID: media.RaffleID,
		URL:      media.URL,
		Order:    media.Order,
		Kind:     string(media.Kind),
	})
	if err != nil {
		return domain.Media{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *MediaRepository) FindByRaffleID(ctx context.Context, raffleID uint) ([]domain.Media, error) {
	found, err := r.dao.FindByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRaffleID -> %w", err)
	}

	media := make([]domain.Media, 0, len(found))
	for _, f := range found {
		media = append(media, r.daoToDomain(f))
	}

	return media, nil
}

func (r *MediaRepository) NextOrder(ctx context.Context, raffleID uint) (int, error) {
	next, err := r.dao.NextOrder(ctx, raffleID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.NextOrder -> %w", err)
	}

	return next, nil
}

func (r *MediaRepository) daoToDomain(m dao.Media) domain.Media {
	return domain.Media{
		ID:        m.ID,
		RaffleID:  m.RaffleID,
		URL:       m.URL,
		Order:     m.Order,
		Kind:      domain.MediaKind(m.Kind),
		CreatedAt: m.CreatedAt,
	}
}
