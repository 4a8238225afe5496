package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) ListCities(ctx context.Context) ([]model.SavedCity, error) {
	cities := []model.SavedCity{}
	q := `SELECT id, name, country, position FROM saved_cities ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &cities, q); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *sqliteCityRepository) GetCityByID(ctx context.Context, id int) (*model.SavedCity, error) {
	var city model.SavedCity
	q := `SELECT id, name, country, position FROM saved_cities WHERE id = ?`
	if err := r.db.GetContext(ctx, &city, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *sqliteCityRepository) AddCity(ctx context.Context, name, country string) (*model.SavedCity, error) {
	q := `
		INSERT INTO saved_cities (name, country, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM saved_cities
	`
	res, err := r.db.ExecContext(ctx, q, name, country)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateCity
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetCityByID(ctx, int(id))
}

func (r *sqliteCityRepository) DeleteCity(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_cities WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sqliteCityRepository) ReorderCities(ctx context.Context, ids []int) error {
	return reorder(ctx, r.db,
		`SELECT id FROM saved_cities`,
		`UPDATE saved_cities SET position = ? WHERE id = ?`,
		ids,
	)
}

func (r *sqliteCityRepository) BulkInsertCities(ctx context.Context, cities []model.SavedCity) error {
	// 100 rows * 3 params stays well under the SQLite variable limit
	chunkSize := 100
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}
		batch := cities[i:end]

		_, err := r.db.NamedExecContext(ctx, `
		INSERT OR IGNORE INTO saved_cities (name, country, position)
		VALUES (:name, :country, :position)`,
			batch)
		if err != nil {
			return err
		}
	}
	return nil
}
