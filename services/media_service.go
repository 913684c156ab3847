package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/courtside/pickleball-league/events"
	"github.com/courtside/pickleball-league/models"
	"github.com/courtside/pickleball-league/repositories"
	"github.com/courtside/pickleball-league/storage"
)

type AddMediaInput struct {
	Type  models.MediaType `json:"type"`
	URL   string           `json:"url"`
	Title string           `json:"title"`
	Rank  int              `json:"rank"`
}

// MediaUpload описывает загружаемый файл рекламного плейлиста.
type MediaUpload struct {
	Reader      io.Reader
	ContentType string
	Filename    string
	Title       string
	Rank        int
	Type        models.MediaType
}

type MediaService interface {
	// AddByURL регистрирует внешний URL (Cloudinary, CDN) как элемент плейлиста.
	AddByURL(ctx context.Context, tournamentID int, input AddMediaInput) (*models.MediaItem, error)
	// Upload кладёт файл в объектное хранилище и регистрирует его в плейлисте.
	Upload(ctx context.Context, tournamentID int, upload MediaUpload) (*models.MediaItem, error)
	List(ctx context.Context, tournamentID int) ([]models.MediaItem, error)
	UpdateRank(ctx context.Context, id string, rank int) (*models.MediaItem, error)
	Delete(ctx context.Context, id string) error
}

type mediaService struct {
	mediaRepo      repositories.MediaRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	publisher      ChangePublisher
	logger         *slog.Logger
}

func NewMediaService(
	mediaRepo repositories.MediaRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	publisher ChangePublisher,
	logger *slog.Logger,
) MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaService{
		mediaRepo:      mediaRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		publisher:      publisher,
		logger:         logger,
	}
}

func validMediaType(t models.MediaType) bool {
	return t == models.MediaTypeVideo || t == models.MediaTypeImage
}

func (s *mediaService) AddByURL(ctx context.Context, tournamentID int, input AddMediaInput) (*models.MediaItem, error) {
	if !validMediaType(input.Type) {
		return nil, ErrMediaInvalidType
	}
	if input.URL == "" {
		return nil, ErrMediaURLRequired
	}
	if err := s.checkTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	item := &models.MediaItem{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Type:         input.Type,
		URL:          input.URL,
		Title:        input.Title,
		Rank:         input.Rank,
	}
	if err := s.mediaRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create media item: %w", err)
	}

	s.publishChange(ctx, tournamentID)
	return item, nil
}

func (s *mediaService) Upload(ctx context.Context, tournamentID int, upload MediaUpload) (*models.MediaItem, error) {
	if !validMediaType(upload.Type) {
		return nil, ErrMediaInvalidType
	}
	if err := s.checkTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := fmt.Sprintf("media/%d/%s%s", tournamentID, id, path.Ext(upload.Filename))
	result, err := s.uploader.Upload(ctx, key, upload.ContentType, upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media file: %w", err)
	}

	item := &models.MediaItem{
		ID:           id,
		TournamentID: tournamentID,
		Type:         upload.Type,
		URL:          result.Location,
		Title:        upload.Title,
		Rank:         upload.Rank,
		FileKey:      &result.Key,
	}
	if err := s.mediaRepo.Create(ctx, item); err != nil {
		// Запись не состоялась: убираем осиротевший файл.
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Error("failed to delete orphaned media file",
				slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to create media item: %w", err)
	}

	s.publishChange(ctx, tournamentID)
	return item, nil
}

func (s *mediaService) List(ctx context.Context, tournamentID int) ([]models.MediaItem, error) {
	items, err := s.mediaRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media items: %w", err)
	}
	return items, nil
}

func (s *mediaService) UpdateRank(ctx context.Context, id string, rank int) (*models.MediaItem, error) {
	if err := s.mediaRepo.UpdateRank(ctx, id, rank); err != nil {
		if errors.Is(err, repositories.ErrMediaItemNotFound) {
			return nil, ErrMediaItemNotFound
		}
		return nil, fmt.Errorf("failed to update media item rank: %w", err)
	}

	item, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload media item %s: %w", id, err)
	}
	s.publishChange(ctx, item.TournamentID)
	return item, nil
}

func (s *mediaService) Delete(ctx context.Context, id string) error {
	item, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMediaItemNotFound) {
			return ErrMediaItemNotFound
		}
		return fmt.Errorf("failed to get media item %s: %w", id, err)
	}

	if err := s.mediaRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete media item %s: %w", id, err)
	}

	if item.FileKey != nil {
		if err := s.uploader.Delete(ctx, *item.FileKey); err != nil {
			s.logger.Error("failed to delete media file from storage",
				slog.String("key", *item.FileKey), slog.Any("error", err))
		}
	}

	s.publishChange(ctx, item.TournamentID)
	return nil
}

func (s *mediaService) checkTournament(ctx context.Context, tournamentID int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to check tournament %d: %w", tournamentID, err)
	}
	return nil
}

// publishChange шлёт событие без даты: плейлист общий для всех игровых
// дней турнира, менеджер обновит все его движки.
func (s *mediaService) publishChange(ctx context.Context, tournamentID int) {
	if s.publisher == nil {
		return
	}
	ev := events.Event{TournamentID: tournamentID, Kind: events.KindMedia}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish media change",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
}
