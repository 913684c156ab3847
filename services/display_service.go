package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/pickleball-league/events"
	"github.com/courtside/pickleball-league/models"
	"github.com/courtside/pickleball-league/repositories"
)

type SetSelectionInput struct {
	DisplayDate    string `json:"display_date"`
	FixtureGroupID string `json:"fixture_group_id"`
	Team1Name      string `json:"team1_name"`
	Team2Name      string `json:"team2_name"`
}

// DisplayService управляет записью "что показывать на экранах": выбранной
// парой команд на турнир и игровой день. Пишется только админским пультом.
type DisplayService interface {
	SetSelection(ctx context.Context, tournamentID int, updatedBy *int, input SetSelectionInput) (*models.DisplaySelection, error)
	GetSelection(ctx context.Context, tournamentID int, date time.Time) (*models.DisplaySelection, error)
	ClearSelection(ctx context.Context, tournamentID int, date time.Time) error
}

type displayService struct {
	displayRepo    repositories.DisplaySelectionRepository
	tournamentRepo repositories.TournamentRepository
	publisher      ChangePublisher
	logger         *slog.Logger
}

func NewDisplayService(
	displayRepo repositories.DisplaySelectionRepository,
	tournamentRepo repositories.TournamentRepository,
	publisher ChangePublisher,
	logger *slog.Logger,
) DisplayService {
	if logger == nil {
		logger = slog.Default()
	}
	return &displayService{
		displayRepo:    displayRepo,
		tournamentRepo: tournamentRepo,
		publisher:      publisher,
		logger:         logger,
	}
}

func (s *displayService) SetSelection(ctx context.Context, tournamentID int, updatedBy *int, input SetSelectionInput) (*models.DisplaySelection, error) {
	if input.FixtureGroupID == "" {
		return nil, ErrFixtureGroupRequired
	}
	date, err := time.Parse("2006-01-02", input.DisplayDate)
	if err != nil {
		return nil, ErrInvalidDisplayDate
	}

	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to check tournament %d: %w", tournamentID, err)
	}

	sel := &models.DisplaySelection{
		TournamentID:   tournamentID,
		DisplayDate:    date,
		FixtureGroupID: input.FixtureGroupID,
		Team1Name:      input.Team1Name,
		Team2Name:      input.Team2Name,
		UpdatedBy:      updatedBy,
	}
	if err := s.displayRepo.Upsert(ctx, sel); err != nil {
		return nil, fmt.Errorf("failed to save display selection: %w", err)
	}

	s.publishChange(ctx, tournamentID, input.DisplayDate)
	return sel, nil
}

func (s *displayService) GetSelection(ctx context.Context, tournamentID int, date time.Time) (*models.DisplaySelection, error) {
	sel, err := s.displayRepo.GetByTournamentDate(ctx, tournamentID, date)
	if err != nil {
		if errors.Is(err, repositories.ErrDisplaySelectionNotFound) {
			return nil, ErrDisplaySelectionNotFound
		}
		return nil, fmt.Errorf("failed to get display selection: %w", err)
	}
	return sel, nil
}

func (s *displayService) ClearSelection(ctx context.Context, tournamentID int, date time.Time) error {
	if err := s.displayRepo.Delete(ctx, tournamentID, date); err != nil {
		if errors.Is(err, repositories.ErrDisplaySelectionNotFound) {
			return ErrDisplaySelectionNotFound
		}
		return fmt.Errorf("failed to clear display selection: %w", err)
	}
	s.publishChange(ctx, tournamentID, date.Format("2006-01-02"))
	return nil
}

func (s *displayService) publishChange(ctx context.Context, tournamentID int, displayDate string) {
	if s.publisher == nil {
		return
	}
	ev := events.Event{
		TournamentID: tournamentID,
		DisplayDate:  displayDate,
		Kind:         events.KindSelection,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish display selection change",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
}
