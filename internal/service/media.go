package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/repository"
)

const (
	maxPhotos    = 10
	maxVideos    = 2
	maxPhotoSize = 10 << 20
	maxVideoSize = 50 << 20
)

var (
	ErrNoFiles        = errors.New("no files supplied")
	ErrTooManyPhotos  = fmt.Errorf("at most %d photos per upload", maxPhotos)
	ErrTooManyVideos  = fmt.Errorf("at most %d videos per upload", maxVideos)
	ErrDisallowedFile = errors.New("file type not allowed")
	ErrFileTooLarge   = errors.New("file exceeds the size limit")
)

var (
	photoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".webm": true, ".mov": true, ".avi": true}
)

type MediaRepository interface {
	Create(ctx context.Context, media domain.Media) (domain.Media, error)
	NextOrder(ctx context.Context, raffleID uint) (int, error)
}

type MediaRaffleRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Raffle, error)
}

type MediaService struct {
	raffleRepo MediaRaffleRepository
	mediaRepo  MediaRepository
	uploadsDir string
}

func NewMediaService(raffleRepo MediaRaffleRepository, mediaRepo MediaRepository, uploadsDir string) *MediaService {
	return &MediaService{
		raffleRepo: raffleRepo,
		mediaRepo:  mediaRepo,
		uploadsDir: uploadsDir,
	}
}

// StoreUploads validates, writes to disk and records the uploaded files.
// The caller must own the target raffle.
func (s *MediaService) StoreUploads(ctx context.Context, raffleID, userID uint, photos, videos []*multipart.FileHeader) ([]domain.Media, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return nil, ErrRaffleNotFound
		}

		return nil, fmt.Errorf("s.raffleRepo.FindByID -> %w", err)
	}
	if raffle.UserID != userID {
		return nil, ErrNotRaffleOwner
	}

	if len(photos) == 0 && len(videos) == 0 {
		return nil, ErrNoFiles
	}
	if len(photos) > maxPhotos {
		return nil, ErrTooManyPhotos
	}
	if len(videos) > maxVideos {
		return nil, ErrTooManyVideos
	}

	for _, f := range photos {
		if err = validateFile(f, photoExtensions, "image/", maxPhotoSize); err != nil {
			return nil, err
		}
	}
	for _, f := range videos {
		if err = validateFile(f, videoExtensions, "video/", maxVideoSize); err != nil {
			return nil, err
		}
	}

	order, err := s.mediaRepo.NextOrder(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("s.mediaRepo.NextOrder -> %w", err)
	}

	if err = os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	var saved []domain.Media
	for _, f := range photos {
		media, err := s.storeFile(ctx, raffleID, f, domain.MediaPhoto, order)
		if err != nil {
			return nil, err
		}
		saved = append(saved, media)
		order++
	}
	for _, f := range videos {
		media, err := s.storeFile(ctx, raffleID, f, domain.MediaVideo, order)
		if err != nil {
			return nil, err
		}
		saved = append(saved, media)
		order++
	}

	return saved, nil
}

func (s *MediaService) storeFile(ctx context.Context, raffleID uint, header *multipart.FileHeader, kind domain.MediaKind, order int) (domain.Media, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))

	src, err := header.Open()
	if err != nil {
		return domain.Media{}, fmt.Errorf("header.Open -> %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return domain.Media{}, fmt.Errorf("os.Create -> %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return domain.Media{}, fmt.Errorf("io.Copy -> %w", err)
	}

	media, err := s.mediaRepo.Create(ctx, domain.Media{
		RaffleID: raffleID,
		URL:      "/uploads/" + name,
		Order:    order,
		Kind:     kind,
	})
	if err != nil {
		return domain.Media{}, fmt.Errorf("s.mediaRepo.Create -> %w", err)
	}

	return media, nil
}

func validateFile(header *multipart.FileHeader, extensions map[string]bool, mimePrefix string, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !extensions[ext] {
		return fmt.Errorf("%w: %s", ErrDisallowedFile, header.Filename)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, mimePrefix) {
		return fmt.Errorf("%w: %s", ErrDisallowedFile, header.Filename)
	}

	if header.Size > maxSize {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, header.Filename)
	}

	return nil
}
