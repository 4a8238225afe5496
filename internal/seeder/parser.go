package seeder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/model"
)

// Parser builds the initial saved city list from config or a seed file
type Parser struct {
	file     string
	defaults []string
}

// NewParser creates a new parser instance with config
func NewParser(seederCfg config.SeederConfig) *Parser {
	return &Parser{
		file:     seederCfg.File,
		defaults: seederCfg.DefaultCities,
	}
}

// ParseCities returns the seed list. Entries from SEEDER_DEFAULT_CITIES take
// precedence over the seed file. Orders start at 1 and follow input order.
func (p *Parser) ParseCities() ([]model.SavedCity, error) {
	if len(p.defaults) > 0 {
		var cities []model.SavedCity
		for _, entry := range p.defaults {
			city, ok := ParseEntry(entry)
			if !ok {
				continue
			}
			cities = append(cities, city)
		}
		return numbered(cities), nil
	}

	file, err := os.Open(p.file)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p.file, err)
	}
	defer file.Close()

	return parseCitiesFromReader(file)
}

// ParseEntry parses "Name" or "Name:CC"
func ParseEntry(entry string) (model.SavedCity, bool) {
	name, country, _ := strings.Cut(entry, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return model.SavedCity{}, false
	}
	return model.SavedCity{
		Name:    name,
		Country: strings.ToUpper(strings.TrimSpace(country)),
	}, true
}

// parseCitiesFromReader reads TSV lines of name and optional country code
func parseCitiesFromReader(reader io.Reader) ([]model.SavedCity, error) {
	var cities []model.SavedCity
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments and blank lines
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		var country string
		if len(parts) > 1 {
			country = strings.ToUpper(strings.TrimSpace(parts[1]))
		}
		cities = append(cities, model.SavedCity{Name: name, Country: country})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan seed file: %w", err)
	}

	return numbered(cities), nil
}

// numbered drops repeated name/country pairs and assigns positions
func numbered(cities []model.SavedCity) []model.SavedCity {
	seen := make(map[string]bool, len(cities))
	out := make([]model.SavedCity, 0, len(cities))
	for _, c := range cities {
		key := strings.ToLower(c.Name) + "\x00" + c.Country
		if seen[key] {
			continue
		}
		seen[key] = true
		c.Order = len(out) + 1
		out = append(out, c)
	}
	return out
}

// Inserter stores seed cities
type Inserter interface {
	BulkInsertCities(ctx context.Context, cities []model.SavedCity) error
}

// Seed parses the seed list and stores it, returning the number of entries
func Seed(ctx context.Context, parser *Parser, store Inserter) (int, error) {
	cities, err := parser.ParseCities()
	if err != nil {
		return 0, fmt.Errorf("failed to parse cities: %w", err)
	}
	if err := store.BulkInsertCities(ctx, cities); err != nil {
		return 0, fmt.Errorf("failed to insert cities: %w", err)
	}
	return len(cities), nil
}
