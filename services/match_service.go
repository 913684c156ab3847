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

// ChangePublisher отправляет событие изменения данных в шину. Публикация
// best-effort: сервисы логируют ошибку и не откатывают запись.
type ChangePublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

type CreateMatchInput struct {
	FixtureGroupID string             `json:"fixture_group_id"`
	Court          string             `json:"court"`
	MatchDate      time.Time          `json:"match_date"`
	MatchOrder     int                `json:"match_order"`
	MatchTypeLabel *string            `json:"match_type_label"`
	Team1Name      string             `json:"team1_name"`
	Team2Name      string             `json:"team2_name"`
	Team1Players   *string            `json:"team1_players"`
	Team2Players   *string            `json:"team2_players"`
	FeaturedImage  *string            `json:"featured_image_url"`
	Status         models.MatchStatus `json:"status"`
}

type UpdateScoreInput struct {
	Games  models.GameScores   `json:"games"`
	Status models.MatchStatus  `json:"status"`
	Winner *models.MatchWinner `json:"winner"`
}

type MatchService interface {
	Create(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournamentDate(ctx context.Context, tournamentID int, date time.Time) ([]*models.Match, error)
	UpdateScore(ctx context.Context, id int, input UpdateScoreInput) (*models.Match, error)
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) (*models.Match, error)
	StartTimeout(ctx context.Context, id int, team string) (*models.Match, error)
	CancelTimeout(ctx context.Context, id int) (*models.Match, error)
	SetDRS(ctx context.Context, id int, active bool, videoURL *string) (*models.Match, error)

	// ClearTimeout — путь записи согласователя табло: сброс таймаута после
	// истечения отсчёта. Реализует display.TimeoutClearer.
	ClearTimeout(ctx context.Context, matchID int) error
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	publisher      ChangePublisher
	logger         *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	publisher ChangePublisher,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		publisher:      publisher,
		logger:         logger,
	}
}

var validStatuses = map[models.MatchStatus]struct{}{
	models.MatchStatusScheduled:  {},
	models.MatchStatusLive:       {},
	models.MatchStatusInProgress: {},
	models.MatchStatusCompleted:  {},
}

func (s *matchService) Create(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error) {
	if input.Team1Name == "" || input.Team2Name == "" {
		return nil, ErrMatchTeamsRequired
	}
	if input.FixtureGroupID == "" {
		return nil, ErrFixtureGroupRequired
	}
	status := input.Status
	if status == "" {
		status = models.MatchStatusScheduled
	}
	if _, ok := validStatuses[status]; !ok {
		return nil, ErrMatchInvalidStatus
	}

	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to check tournament %d: %w", tournamentID, err)
	}

	match := &models.Match{
		TournamentID:     tournamentID,
		FixtureGroupID:   input.FixtureGroupID,
		Court:            input.Court,
		MatchDate:        input.MatchDate,
		MatchOrder:       input.MatchOrder,
		MatchTypeLabel:   input.MatchTypeLabel,
		Team1Name:        input.Team1Name,
		Team2Name:        input.Team2Name,
		Team1Players:     input.Team1Players,
		Team2Players:     input.Team2Players,
		Status:           status,
		Games:            models.GameScores{},
		FeaturedImageURL: input.FeaturedImage,
	}
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.publishChange(ctx, match)
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListByTournamentDate(ctx context.Context, tournamentID int, date time.Time) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournamentDate(ctx, tournamentID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) UpdateScore(ctx context.Context, id int, input UpdateScoreInput) (*models.Match, error) {
	if _, ok := validStatuses[input.Status]; !ok {
		return nil, ErrMatchInvalidStatus
	}

	if err := s.matchRepo.UpdateScore(ctx, id, input.Games, input.Status, input.Winner); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d score: %w", id, err)
	}
	return s.reload(ctx, id)
}

func (s *matchService) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) (*models.Match, error) {
	if _, ok := validStatuses[status]; !ok {
		return nil, ErrMatchInvalidStatus
	}

	if err := s.matchRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d status: %w", id, err)
	}
	return s.reload(ctx, id)
}

func (s *matchService) StartTimeout(ctx context.Context, id int, team string) (*models.Match, error) {
	if team == "" {
		return nil, ErrTimeoutTeamRequired
	}

	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !match.Status.IsLive() {
		return nil, ErrTimeoutNotAllowed
	}

	timeout := &models.TimeoutState{Team: team, StartTime: time.Now().UTC()}
	if err := s.matchRepo.SetTimeout(ctx, id, timeout); err != nil {
		return nil, fmt.Errorf("failed to start timeout on match %d: %w", id, err)
	}
	return s.reload(ctx, id)
}

func (s *matchService) CancelTimeout(ctx context.Context, id int) (*models.Match, error) {
	if err := s.matchRepo.SetTimeout(ctx, id, nil); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to cancel timeout on match %d: %w", id, err)
	}
	return s.reload(ctx, id)
}

func (s *matchService) SetDRS(ctx context.Context, id int, active bool, videoURL *string) (*models.Match, error) {
	if active {
		match, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		hasStored := match.DRSVideoURL != nil && *match.DRSVideoURL != ""
		hasNew := videoURL != nil && *videoURL != ""
		if !hasStored && !hasNew {
			return nil, ErrDRSVideoURLRequired
		}
	}

	if err := s.matchRepo.SetDRS(ctx, id, active, videoURL); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d DRS: %w", id, err)
	}
	return s.reload(ctx, id)
}

// ClearTimeout сбрасывает таймаут без повторов при ошибке: следующее
// обновление данных выправит состояние табло само.
func (s *matchService) ClearTimeout(ctx context.Context, matchID int) error {
	if err := s.matchRepo.SetTimeout(ctx, matchID, nil); err != nil {
		return fmt.Errorf("failed to clear timeout on match %d: %w", matchID, err)
	}
	if match, err := s.matchRepo.GetByID(ctx, matchID); err == nil {
		s.publishChange(ctx, match)
	}
	return nil
}

func (s *matchService) reload(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, match)
	return match, nil
}

func (s *matchService) publishChange(ctx context.Context, match *models.Match) {
	if s.publisher == nil {
		return
	}
	ev := events.Event{
		TournamentID: match.TournamentID,
		DisplayDate:  match.MatchDate.Format("2006-01-02"),
		Kind:         events.KindMatches,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish match change",
			slog.Int("match_id", match.ID), slog.Any("error", err))
	}
}
