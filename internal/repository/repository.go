package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrDuplicateCity is returned when the same name and country are saved twice
	ErrDuplicateCity = errors.New("city is already saved")
	// ErrInvalidOrder is returned when a reorder request is not a permutation of the saved ids
	ErrInvalidOrder = errors.New("order must list every saved city exactly once")
)

// CityRepository defines operations on the saved city list
type CityRepository interface {
	ListCities(ctx context.Context) ([]model.SavedCity, error)
	GetCityByID(ctx context.Context, id int) (*model.SavedCity, error)
	AddCity(ctx context.Context, name, country string) (*model.SavedCity, error)
	DeleteCity(ctx context.Context, id int) (bool, error)
	ReorderCities(ctx context.Context, ids []int) error
	BulkInsertCities(ctx context.Context, cities []model.SavedCity) error
}

// Container holds all repositories
type Container struct {
	City CityRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{City: &pgCityRepository{db: db}}
	}

	// Default to SQLite
	return &Container{City: &sqliteCityRepository{db: db}}
}

// IsDatabaseEmpty reports whether no city has been saved yet (used by main)
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM saved_cities")
	if err != nil {
		// Missing table counts as empty
		return true, nil
	}
	return count == 0, nil
}

// reorder rewrites positions inside one transaction. selectIDs and update are
// dialect specific queries.
func reorder(ctx context.Context, db *sqlx.DB, selectIDs, update string, ids []int) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stored []int
	if err := tx.SelectContext(ctx, &stored, selectIDs); err != nil {
		return err
	}
	if !isPermutation(stored, ids) {
		return ErrInvalidOrder
	}

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, update, i+1, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func isPermutation(stored, ids []int) bool {
	if len(stored) != len(ids) {
		return false
	}
	seen := make(map[int]bool, len(stored))
	for _, id := range stored {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return false
		}
		delete(seen, id)
	}
	return true
}
