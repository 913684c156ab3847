package services

import (
	"context"
	"errors"
	"time"

	"github.com/courtside/pickleball-league/models"
	"github.com/courtside/pickleball-league/repositories"
	"github.com/courtside/pickleball-league/storage"
)

// DisplayLoader собирает входы движка табло из репозиториев.
// Реализует display.Loader.
type DisplayLoader struct {
	matchRepo   repositories.MatchRepository
	displayRepo repositories.DisplaySelectionRepository
	mediaRepo   repositories.MediaRepository
	sponsorRepo repositories.SponsorRepository
	uploader    storage.FileUploader
}

func NewDisplayLoader(
	matchRepo repositories.MatchRepository,
	displayRepo repositories.DisplaySelectionRepository,
	mediaRepo repositories.MediaRepository,
	sponsorRepo repositories.SponsorRepository,
	uploader storage.FileUploader,
) *DisplayLoader {
	return &DisplayLoader{
		matchRepo:   matchRepo,
		displayRepo: displayRepo,
		mediaRepo:   mediaRepo,
		sponsorRepo: sponsorRepo,
		uploader:    uploader,
	}
}

func (l *DisplayLoader) LoadMatches(ctx context.Context, tournamentID int, date time.Time) ([]*models.Match, error) {
	return l.matchRepo.ListByTournamentDate(ctx, tournamentID, date)
}

// LoadSelection возвращает nil без ошибки, когда пара ещё не выбрана:
// для табло это штатное состояние, а не сбой.
func (l *DisplayLoader) LoadSelection(ctx context.Context, tournamentID int, date time.Time) (*models.DisplaySelection, error) {
	sel, err := l.displayRepo.GetByTournamentDate(ctx, tournamentID, date)
	if err != nil {
		if errors.Is(err, repositories.ErrDisplaySelectionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sel, nil
}

func (l *DisplayLoader) LoadMedia(ctx context.Context, tournamentID int) ([]models.MediaItem, error) {
	return l.mediaRepo.ListByTournament(ctx, tournamentID)
}

func (l *DisplayLoader) LoadSponsors(ctx context.Context) ([]models.Sponsor, error) {
	sponsors, err := l.sponsorRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sponsors {
		resolveSponsorLogo(&sponsors[i], l.uploader)
	}
	return sponsors, nil
}
