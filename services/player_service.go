package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/courtside/pickleball-league/models"
	"github.com/courtside/pickleball-league/repositories"
	"github.com/courtside/pickleball-league/storage"
	"github.com/courtside/pickleball-league/utils"
)

type RegisterPlayerInput struct {
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	SkillLevel *string `json:"skill_level"`
	Division   *string `json:"division"`
}

// PlayerUpload — файл, пришедший с формы регистрации (фото или документ).
type PlayerUpload struct {
	Reader      io.Reader
	ContentType string
	Filename    string
}

type PlayerService interface {
	Register(ctx context.Context, input RegisterPlayerInput, photo, document *PlayerUpload) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Delete(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{playerRepo: playerRepo, uploader: uploader, logger: logger}
}

func (s *playerService) Register(ctx context.Context, input RegisterPlayerInput, photo, document *PlayerUpload) (*models.Player, error) {
	if input.FullName == "" {
		return nil, ErrPlayerNameRequired
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, ErrPlayerEmailInvalid
	}

	player := &models.Player{
		FullName:   input.FullName,
		Email:      input.Email,
		Phone:      input.Phone,
		SkillLevel: input.SkillLevel,
		Division:   input.Division,
	}

	var uploadedKeys []string
	if photo != nil {
		key, err := s.uploadFile(ctx, "players/photos", photo)
		if err != nil {
			return nil, err
		}
		player.PhotoKey = &key
		uploadedKeys = append(uploadedKeys, key)
	}
	if document != nil {
		key, err := s.uploadFile(ctx, "players/documents", document)
		if err != nil {
			s.cleanupUploads(ctx, uploadedKeys)
			return nil, err
		}
		player.DocumentKey = &key
		uploadedKeys = append(uploadedKeys, key)
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		s.cleanupUploads(ctx, uploadedKeys)
		if errors.Is(err, repositories.ErrPlayerEmailConflict) {
			return nil, ErrPlayerEmailConflict
		}
		return nil, fmt.Errorf("failed to register player: %w", err)
	}

	s.resolveURLs(player)
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	s.resolveURLs(player)
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		s.resolveURLs(p)
	}
	return players, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player %d: %w", id, err)
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}

	// Файлы чистим best-effort: осиротевший объект хуже, чем лишний лог.
	var keys []string
	if player.PhotoKey != nil {
		keys = append(keys, *player.PhotoKey)
	}
	if player.DocumentKey != nil {
		keys = append(keys, *player.DocumentKey)
	}
	s.cleanupUploads(ctx, keys)
	return nil
}

func (s *playerService) uploadFile(ctx context.Context, prefix string, upload *PlayerUpload) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), path.Ext(upload.Filename))
	result, err := s.uploader.Upload(ctx, key, upload.ContentType, upload.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload player file: %w", err)
	}
	return result.Key, nil
}

func (s *playerService) cleanupUploads(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.uploader.Delete(ctx, key); err != nil {
			s.logger.Error("failed to delete player upload",
				slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (s *playerService) resolveURLs(player *models.Player) {
	if s.uploader == nil {
		return
	}
	if player.PhotoKey != nil {
		if url := s.uploader.GetPublicURL(*player.PhotoKey); url != "" {
			player.PhotoURL = &url
		}
	}
	if player.DocumentKey != nil {
		if url := s.uploader.GetPublicURL(*player.DocumentKey); url != "" {
			player.DocumentURL = &url
		}
	}
}
