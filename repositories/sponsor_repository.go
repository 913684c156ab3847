package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/pickleball-league/models"
)

var ErrSponsorNotFound = errors.New("sponsor not found")

type SponsorRepository interface {
	Create(ctx context.Context, sponsor *models.Sponsor) error
	List(ctx context.Context) ([]models.Sponsor, error)
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresSponsorRepository struct {
	db *sql.DB
}

func NewPostgresSponsorRepository(db *sql.DB) SponsorRepository {
	return &postgresSponsorRepository{db: db}
}

func (r *postgresSponsorRepository) Create(ctx context.Context, sponsor *models.Sponsor) error {
	query := `
		INSERT INTO sponsors (name, logo_key, rank)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, sponsor.Name, sponsor.LogoKey, sponsor.Rank).
		Scan(&sponsor.ID, &sponsor.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sponsor: %w", err)
	}
	return nil
}

func (r *postgresSponsorRepository) List(ctx context.Context) ([]models.Sponsor, error) {
	query := `SELECT id, name, logo_key, rank, created_at FROM sponsors ORDER BY rank ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sponsors: %w", err)
	}
	defer rows.Close()

	sponsors := make([]models.Sponsor, 0)
	for rows.Next() {
		var s models.Sponsor
		if scanErr := rows.Scan(&s.ID, &s.Name, &s.LogoKey, &s.Rank, &s.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan sponsor row: %w", scanErr)
		}
		sponsors = append(sponsors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sponsor rows: %w", err)
	}
	return sponsors, nil
}

func (r *postgresSponsorRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE sponsors SET logo_key = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update sponsor %d logo: %w", id, err)
	}
	return checkAffectedRows(result, ErrSponsorNotFound)
}

func (r *postgresSponsorRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM sponsors WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete sponsor %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSponsorNotFound)
}
