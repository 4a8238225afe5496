package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

const pgUniqueViolation = "23505"

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) ListCities(ctx context.Context) ([]model.SavedCity, error) {
	cities := []model.SavedCity{}
	q := `SELECT id, name, country, position FROM saved_cities ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &cities, q); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *pgCityRepository) GetCityByID(ctx context.Context, id int) (*model.SavedCity, error) {
	var city model.SavedCity
	q := `SELECT id, name, country, position FROM saved_cities WHERE id = $1`
	if err := r.db.GetContext(ctx, &city, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) AddCity(ctx context.Context, name, country string) (*model.SavedCity, error) {
	q := `
		INSERT INTO saved_cities (name, country, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM saved_cities
		RETURNING id, name, country, position
	`
	var city model.SavedCity
	if err := r.db.GetContext(ctx, &city, q, name, country); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateCity
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) DeleteCity(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_cities WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *pgCityRepository) ReorderCities(ctx context.Context, ids []int) error {
	return reorder(ctx, r.db,
		`SELECT id FROM saved_cities FOR UPDATE`,
		`UPDATE saved_cities SET position = $1 WHERE id = $2`,
		ids,
	)
}

func (r *pgCityRepository) BulkInsertCities(ctx context.Context, cities []model.SavedCity) error {
	// Chunking keeps us under the 65535 parameter limit
	chunkSize := 2000
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}
		batch := cities[i:end]

		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO saved_cities (name, country, position)
		VALUES (:name, :country, :position)
		ON CONFLICT (name, country) DO NOTHING`,
			batch)
		if err != nil {
			return err
		}
	}
	return nil
}
