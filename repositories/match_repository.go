package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/pickleball-league/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournamentDate(ctx context.Context, tournamentID int, date time.Time) ([]*models.Match, error)
	UpdateScore(ctx context.Context, id int, games models.GameScores, status models.MatchStatus, winner *models.MatchWinner) error
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error
	SetTimeout(ctx context.Context, id int, timeout *models.TimeoutState) error
	SetDRS(ctx context.Context, id int, active bool, videoURL *string) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, fixture_group_id, court, match_date, match_order,
	match_type_label, team1_name, team2_name, team1_players, team2_players,
	status, games, winner, timeout, drs_video_active, drs_video_url,
	featured_image_url, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, fixture_group_id, court, match_date, match_order,
			 match_type_label, team1_name, team2_name, team1_players, team2_players,
			 status, games, winner, timeout, drs_video_active, drs_video_url,
			 featured_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	if exec == nil {
		exec = r.db
	}

	var winner sql.NullString
	if match.Winner != nil {
		winner = sql.NullString{String: string(*match.Winner), Valid: true}
	}

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.FixtureGroupID,
		match.Court,
		match.MatchDate,
		match.MatchOrder,
		match.MatchTypeLabel,
		match.Team1Name,
		match.Team2Name,
		match.Team1Players,
		match.Team2Players,
		match.Status,
		match.Games,
		winner,
		match.Timeout,
		match.DRSVideoActive,
		match.DRSVideoURL,
		match.FeaturedImageURL,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatchRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournamentDate(ctx context.Context, tournamentID int, date time.Time) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND match_date::date = $2::date
		ORDER BY match_order ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatchRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id int, games models.GameScores, status models.MatchStatus, winner *models.MatchWinner) error {
	query := `UPDATE matches SET games = $1, status = $2, winner = $3 WHERE id = $4`

	var winnerVal sql.NullString
	if winner != nil {
		winnerVal = sql.NullString{String: string(*winner), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, games, status, winnerVal, id)
	if err != nil {
		return fmt.Errorf("failed to update match %d score: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// SetTimeout записывает состояние таймаута; nil сбрасывает его в NULL.
func (r *postgresMatchRepository) SetTimeout(ctx context.Context, id int, timeout *models.TimeoutState) error {
	query := `UPDATE matches SET timeout = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, timeout, id)
	if err != nil {
		return fmt.Errorf("failed to update match %d timeout: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetDRS(ctx context.Context, id int, active bool, videoURL *string) error {
	query := `UPDATE matches SET drs_video_active = $1, drs_video_url = COALESCE($2, drs_video_url) WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, active, videoURL, id)
	if err != nil {
		return fmt.Errorf("failed to update match %d DRS flags: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM matches WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatchRow(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var (
		winner     sql.NullString
		timeoutRaw []byte
	)

	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.FixtureGroupID,
		&match.Court,
		&match.MatchDate,
		&match.MatchOrder,
		&match.MatchTypeLabel,
		&match.Team1Name,
		&match.Team2Name,
		&match.Team1Players,
		&match.Team2Players,
		&match.Status,
		&match.Games,
		&winner,
		&timeoutRaw,
		&match.DRSVideoActive,
		&match.DRSVideoURL,
		&match.FeaturedImageURL,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if winner.Valid {
		w := models.MatchWinner(winner.String)
		match.Winner = &w
	}

	// Битое значение таймаута не валит выборку: матч читается без таймаута.
	timeout, parseErr := models.ParseTimeout(timeoutRaw)
	if parseErr == nil {
		match.Timeout = timeout
	}

	return match, nil
}
