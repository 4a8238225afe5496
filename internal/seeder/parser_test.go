package seeder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInserter struct {
	mock.Mock
}

func (m *MockInserter) BulkInsertCities(ctx context.Context, cities []model.SavedCity) error {
	args := m.Called(ctx, cities)
	return args.Error(0)
}

func TestParseEntry(t *testing.T) {
	city, ok := ParseEntry(" London : gb ")
	require.True(t, ok)
	assert.Equal(t, model.SavedCity{Name: "London", Country: "GB"}, city)

	city, ok = ParseEntry("Paris")
	require.True(t, ok)
	assert.Equal(t, "", city.Country)

	_, ok = ParseEntry(":GB")
	assert.False(t, ok)
}

func TestParser_ParseCitiesFromDefaults(t *testing.T) {
	parser := NewParser(config.SeederConfig{
		DefaultCities: []string{"London:GB", "Paris:FR", "london:gb", ":XX"},
		File:          "does-not-exist.tsv",
	})

	cities, err := parser.ParseCities()
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "London", cities[0].Name)
	assert.Equal(t, 1, cities[0].Order)
	assert.Equal(t, "Paris", cities[1].Name)
	assert.Equal(t, 2, cities[1].Order)
}

func TestParser_ParseCitiesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "cities.tsv")

	testData := `# name	country
London	gb

Tokyo	JP
Reykjavik
	XX
`
	require.NoError(t, os.WriteFile(testFile, []byte(testData), 0644))

	parser := NewParser(config.SeederConfig{File: testFile})
	cities, err := parser.ParseCities()
	require.NoError(t, err)

	require.Len(t, cities, 3)
	assert.Equal(t, model.SavedCity{Name: "London", Country: "GB", Order: 1}, cities[0])
	assert.Equal(t, model.SavedCity{Name: "Tokyo", Country: "JP", Order: 2}, cities[1])
	assert.Equal(t, model.SavedCity{Name: "Reykjavik", Order: 3}, cities[2])
}

func TestParser_MissingFile(t *testing.T) {
	parser := NewParser(config.SeederConfig{File: filepath.Join(t.TempDir(), "missing.tsv")})
	_, err := parser.ParseCities()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to open"))
}

func TestSeed(t *testing.T) {
	parser := NewParser(config.SeederConfig{DefaultCities: []string{"Oslo:NO"}})

	t.Run("stores parsed cities", func(t *testing.T) {
		store := new(MockInserter)
		store.On("BulkInsertCities", mock.Anything, []model.SavedCity{{Name: "Oslo", Country: "NO", Order: 1}}).Return(nil)

		n, err := Seed(context.Background(), parser, store)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		store.AssertExpectations(t)
	})

	t.Run("insert failure", func(t *testing.T) {
		store := new(MockInserter)
		store.On("BulkInsertCities", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := Seed(context.Background(), parser, store)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert cities: disk full")
	})
}
