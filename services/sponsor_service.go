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

type CreateSponsorInput struct {
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

type SponsorService interface {
	Create(ctx context.Context, input CreateSponsorInput) (*models.Sponsor, error)
	List(ctx context.Context) ([]models.Sponsor, error)
	UploadLogo(ctx context.Context, id int, contentType, filename string, reader io.Reader) (*models.Sponsor, error)
	Delete(ctx context.Context, id int) error
}

type sponsorService struct {
	sponsorRepo repositories.SponsorRepository
	uploader    storage.FileUploader
	publisher   ChangePublisher
	logger      *slog.Logger
}

func NewSponsorService(
	sponsorRepo repositories.SponsorRepository,
	uploader storage.FileUploader,
	publisher ChangePublisher,
	logger *slog.Logger,
) SponsorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sponsorService{
		sponsorRepo: sponsorRepo,
		uploader:    uploader,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *sponsorService) Create(ctx context.Context, input CreateSponsorInput) (*models.Sponsor, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}

	sponsor := &models.Sponsor{Name: input.Name, Rank: input.Rank}
	if err := s.sponsorRepo.Create(ctx, sponsor); err != nil {
		return nil, fmt.Errorf("failed to create sponsor: %w", err)
	}

	s.publishChange(ctx)
	return sponsor, nil
}

func (s *sponsorService) List(ctx context.Context) ([]models.Sponsor, error) {
	sponsors, err := s.sponsorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	for i := range sponsors {
		resolveSponsorLogo(&sponsors[i], s.uploader)
	}
	return sponsors, nil
}

func (s *sponsorService) UploadLogo(ctx context.Context, id int, contentType, filename string, reader io.Reader) (*models.Sponsor, error) {
	key := fmt.Sprintf("sponsors/%d/%s%s", id, uuid.NewString(), path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload sponsor logo: %w", err)
	}

	if err := s.sponsorRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		if errors.Is(err, repositories.ErrSponsorNotFound) {
			if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
				s.logger.Error("failed to delete orphaned sponsor logo",
					slog.String("key", result.Key), slog.Any("error", delErr))
			}
			return nil, ErrSponsorNotFound
		}
		return nil, fmt.Errorf("failed to save sponsor %d logo key: %w", id, err)
	}

	sponsor := &models.Sponsor{ID: id, LogoKey: &result.Key}
	resolveSponsorLogo(sponsor, s.uploader)
	s.publishChange(ctx)
	return sponsor, nil
}

func (s *sponsorService) Delete(ctx context.Context, id int) error {
	if err := s.sponsorRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSponsorNotFound) {
			return ErrSponsorNotFound
		}
		return fmt.Errorf("failed to delete sponsor %d: %w", id, err)
	}
	s.publishChange(ctx)
	return nil
}

func resolveSponsorLogo(sponsor *models.Sponsor, uploader storage.FileUploader) {
	if sponsor.LogoKey != nil && uploader != nil {
		url := uploader.GetPublicURL(*sponsor.LogoKey)
		if url != "" {
			sponsor.LogoURL = &url
		}
	}
}

// publishChange шлёт событие без турнира и даты: логотипы общие для всех
// экранов, менеджер обновит все движки.
func (s *sponsorService) publishChange(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.Event{Kind: events.KindSponsors}); err != nil {
		s.logger.Error("failed to publish sponsor change", slog.Any("error", err))
	}
}
