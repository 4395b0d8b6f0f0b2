package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/repository"
)

var (
	ErrRaffleNotFound = repository.ErrRaffleNotFound
	ErrNotRaffleOwner = errors.New("user does not own this raffle")
)

type RaffleRepository interface {
	Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error)
	FindByID(ctx context.Context, id uint) (domain.Raffle, error)
	FindOwned(ctx context.Context, id, userID uint) (domain.Raffle, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Raffle, error)
	FindAll(ctx context.Context) ([]domain.Raffle, error)
	CountSoldPerRaffle(ctx context.Context) (map[uint]int, error)
	Update(ctx context.Context, id, userID uint, update domain.RaffleUpdate) error
	Delete(ctx context.Context, id, userID uint) error
}

type RaffleTicketRepository interface {
	FindNumbersByRaffle(ctx context.Context, raffleID uint) ([]int, error)
	FindByRaffleID(ctx context.Context, raffleID uint) ([]domain.Ticket, error)
}

type RaffleMediaRepository interface {
	FindByRaffleID(ctx context.Context, raffleID uint) ([]domain.Media, error)
}

type RaffleService struct {
	repo          RaffleRepository
	ticketRepo    RaffleTicketRepository
	mediaRepo     RaffleMediaRepository
	publicBaseURL string
}

func NewRaffleService(repo RaffleRepository, ticketRepo RaffleTicketRepository, mediaRepo RaffleMediaRepository, publicBaseURL string) *RaffleService {
	return &RaffleService{
		repo:          repo,
		ticketRepo:    ticketRepo,
		mediaRepo:     mediaRepo,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *RaffleService) CreateRaffle(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	created, err := s.repo.Create(ctx, raffle)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *RaffleService) ListOwnedRaffles(ctx context.Context, userID uint) ([]domain.Raffle, error) {
	raffles, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return raffles, nil
}

// GetRaffle returns the raffle with its occupied and available number sets
// and media. The identity tag is threaded explicitly; owners and anonymous
// callers currently receive the same projection.
func (s *RaffleService) GetRaffle(ctx context.Context, id uint, caller domain.Identity) (domain.RaffleDetail, error) {
	raffle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return domain.RaffleDetail{}, ErrRaffleNotFound
		}

		return domain.RaffleDetail{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	occupied, err := s.ticketRepo.FindNumbersByRaffle(ctx, id)
	if err != nil {
		return domain.RaffleDetail{}, fmt.Errorf("s.ticketRepo.FindNumbersByRaffle -> %w", err)
	}

	media, err := s.mediaRepo.FindByRaffleID(ctx, id)
	if err != nil {
		return domain.RaffleDetail{}, fmt.Errorf("s.mediaRepo.FindByRaffleID -> %w", err)
	}

	mediaURLs := make([]string, 0, len(media))
	for _, m := range media {
		mediaURLs = append(mediaURLs, m.URL)
	}

	return domain.RaffleDetail{
		Raffle:           raffle,
		OccupiedNumbers:  occupied,
		AvailableNumbers: availableNumbers(raffle.MaxNumber, occupied),
		MediaURLs:        mediaURLs,
	}, nil
}

// ListPublicRaffles returns every raffle with sale counters for anonymous
// browsing. Cover URLs are resolved to absolute URLs.
func (s *RaffleService) ListPublicRaffles(ctx context.Context) ([]domain.RaffleListing, error) {
	raffles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	sold, err := s.repo.CountSoldPerRaffle(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.CountSoldPerRaffle -> %w", err)
	}

	listings := make([]domain.RaffleListing, 0, len(raffles))
	for _, raffle := range raffles {
		count := sold[raffle.ID]
		available := raffle.MaxNumber - count
		if available < 0 {
			available = 0
		}

		raffle.CoverURL = s.absoluteURL(raffle.CoverURL)
		listings = append(listings, domain.RaffleListing{
			Raffle:    raffle,
			Sold:      count,
			Available: available,
		})
	}

	return listings, nil
}

func (s *RaffleService) UpdateRaffle(ctx context.Context, id, userID uint, update domain.RaffleUpdate) error {
	if err := s.repo.Update(ctx, id, userID, update); err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return ErrRaffleNotFound
		}

		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}

func (s *RaffleService) DeleteRaffle(ctx context.Context, id, userID uint) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return ErrRaffleNotFound
		}

		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// ListTickets returns all tickets of an owned raffle, ordered by number.
func (s *RaffleService) ListTickets(ctx context.Context, raffleID, userID uint) ([]domain.Ticket, error) {
	raffle, err := s.repo.FindByID(ctx, raffleID)
	if err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return nil, ErrRaffleNotFound
		}

		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if raffle.UserID != userID {
		return nil, ErrNotRaffleOwner
	}

	tickets, err := s.ticketRepo.FindByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("s.ticketRepo.FindByRaffleID -> %w", err)
	}

	return tickets, nil
}

func (s *RaffleService) absoluteURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return s.publicBaseURL + path
}

// availableNumbers is {1..max} minus occupied, ascending and duplicate-free.
func availableNumbers(max int, occupied []int) []int {
	taken := make(map[int]struct{}, len(occupied))
	for _, n := range occupied {
		taken[n] = struct{}{}
	}

	// The max may have been lowered below the sold count by an update.
	capacity := max - len(taken)
	if capacity < 0 {
		capacity = 0
	}

	available := make([]int, 0, capacity)
	for n := 1; n <= max; n++ {
		if _, ok := taken[n]; !ok {
			available = append(available, n)
		}
	}

	return available
}
