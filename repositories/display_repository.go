package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/pickleball-league/models"
)

var ErrDisplaySelectionNotFound = errors.New("display selection not found")

type DisplaySelectionRepository interface {
	// Upsert создаёт или обновляет выбор пары на турнир+дату.
	Upsert(ctx context.Context, sel *models.DisplaySelection) error
	GetByTournamentDate(ctx context.Context, tournamentID int, date time.Time) (*models.DisplaySelection, error)
	Delete(ctx context.Context, tournamentID int, date time.Time) error
}

type postgresDisplaySelectionRepository struct {
	db *sql.DB
}

func NewPostgresDisplaySelectionRepository(db *sql.DB) DisplaySelectionRepository {
	return &postgresDisplaySelectionRepository{db: db}
}

func (r *postgresDisplaySelectionRepository) Upsert(ctx context.Context, sel *models.DisplaySelection) error {
	query := `
		INSERT INTO display_selections
			(tournament_id, display_date, fixture_group_id, team1_name, team2_name, updated_by, updated_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, NOW())
		ON CONFLICT (tournament_id, display_date) DO UPDATE SET
			fixture_group_id = EXCLUDED.fixture_group_id,
			team1_name = EXCLUDED.team1_name,
			team2_name = EXCLUDED.team2_name,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		sel.TournamentID,
		sel.DisplayDate,
		sel.FixtureGroupID,
		sel.Team1Name,
		sel.Team2Name,
		sel.UpdatedBy,
	).Scan(&sel.ID, &sel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert display selection: %w", err)
	}
	return nil
}

func (r *postgresDisplaySelectionRepository) GetByTournamentDate(ctx context.Context, tournamentID int, date time.Time) (*models.DisplaySelection, error) {
	query := `
		SELECT id, tournament_id, display_date, fixture_group_id, team1_name, team2_name, updated_by, updated_at
		FROM display_selections
		WHERE tournament_id = $1 AND display_date = $2::date`

	sel := &models.DisplaySelection{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, date).Scan(
		&sel.ID,
		&sel.TournamentID,
		&sel.DisplayDate,
		&sel.FixtureGroupID,
		&sel.Team1Name,
		&sel.Team2Name,
		&sel.UpdatedBy,
		&sel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisplaySelectionNotFound
		}
		return nil, fmt.Errorf("failed to scan display selection: %w", err)
	}
	return sel, nil
}

func (r *postgresDisplaySelectionRepository) Delete(ctx context.Context, tournamentID int, date time.Time) error {
	query := `DELETE FROM display_selections WHERE tournament_id = $1 AND display_date = $2::date`

	result, err := r.db.ExecContext(ctx, query, tournamentID, date)
	if err != nil {
		return fmt.Errorf("failed to delete display selection: %w", err)
	}
	return checkAffectedRows(result, ErrDisplaySelectionNotFound)
}
