package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/pickleball-league/models"
)

var ErrMediaItemNotFound = errors.New("media item not found")

type MediaRepository interface {
	Create(ctx context.Context, item *models.MediaItem) error
	GetByID(ctx context.Context, id string) (*models.MediaItem, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.MediaItem, error)
	UpdateRank(ctx context.Context, id string, rank int) error
	Delete(ctx context.Context, id string) error
}

type postgresMediaRepository struct {
	db *sql.DB
}

func NewPostgresMediaRepository(db *sql.DB) MediaRepository {
	return &postgresMediaRepository{db: db}
}

func (r *postgresMediaRepository) Create(ctx context.Context, item *models.MediaItem) error {
	query := `
		INSERT INTO media_items (id, tournament_id, type, url, title, rank, file_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.TournamentID,
		item.Type,
		item.URL,
		item.Title,
		item.Rank,
		item.FileKey,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert media item: %w", err)
	}
	return nil
}

func (r *postgresMediaRepository) GetByID(ctx context.Context, id string) (*models.MediaItem, error) {
	query := `
		SELECT id, tournament_id, type, url, title, rank, file_key, created_at
		FROM media_items WHERE id = $1`

	item := &models.MediaItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.TournamentID,
		&item.Type,
		&item.URL,
		&item.Title,
		&item.Rank,
		&item.FileKey,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaItemNotFound
		}
		return nil, fmt.Errorf("failed to scan media item %s: %w", id, err)
	}
	return item, nil
}

func (r *postgresMediaRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.MediaItem, error) {
	query := `
		SELECT id, tournament_id, type, url, title, rank, file_key, created_at
		FROM media_items
		WHERE tournament_id = $1
		ORDER BY rank ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media items for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	items := make([]models.MediaItem, 0)
	for rows.Next() {
		var item models.MediaItem
		if scanErr := rows.Scan(
			&item.ID,
			&item.TournamentID,
			&item.Type,
			&item.URL,
			&item.Title,
			&item.Rank,
			&item.FileKey,
			&item.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan media item row: %w", scanErr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media item rows: %w", err)
	}
	return items, nil
}

func (r *postgresMediaRepository) UpdateRank(ctx context.Context, id string, rank int) error {
	query := `UPDATE media_items SET rank = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, rank, id)
	if err != nil {
		return fmt.Errorf("failed to update media item %s rank: %w", id, err)
	}
	return checkAffectedRows(result, ErrMediaItemNotFound)
}

func (r *postgresMediaRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM media_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete media item %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMediaItemNotFound)
}
