package memory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// Seed is the YAML layout of a demo dataset
type Seed struct {
	Stores []SeedStore `yaml:"stores"`
}

// SeedStore is a store and the items pinned on its floorplan
type SeedStore struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Address   string     `yaml:"address"`
	Latitude  float64    `yaml:"latitude"`
	Longitude float64    `yaml:"longitude"`
	Inactive  bool       `yaml:"inactive"`
	Items     []SeedItem `yaml:"items"`
}

// SeedItem is one item of a seeded store
type SeedItem struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	X           float64    `yaml:"x"`
	Y           float64    `yaml:"y"`
	Verified    bool       `yaml:"verified"`
	VerifiedAt  *time.Time `yaml:"verifiedAt"`
	ReportCount int        `yaml:"reportCount"`
}

// LoadSeed reads a YAML seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// Apply validates the seed and loads it into db
func (s *Seed) Apply(db *DB, now time.Time) error {
	for _, st := range s.Stores {
		location := entities.Location{Latitude: st.Latitude, Longitude: st.Longitude}
		if err := location.Validate(); err != nil {
			return fmt.Errorf("store %s: %w", st.ID, err)
		}
		db.PutStore(entities.Store{
			ID:        st.ID,
			Name:      st.Name,
			Address:   st.Address,
			Location:  location,
			IsActive:  !st.Inactive,
			CreatedAt: now,
			UpdatedAt: now,
		})

		for _, it := range st.Items {
			item := entities.Item{
				ID:          it.ID,
				StoreID:     st.ID,
				Name:        it.Name,
				Description: it.Description,
				Position:    entities.FloorPosition{X: it.X, Y: it.Y},
				Verified:    it.Verified,
				VerifiedAt:  it.VerifiedAt,
				ReportCount: it.ReportCount,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if item.Verified && item.VerifiedAt == nil {
				t := now
				item.VerifiedAt = &t
			}
			db.PutItem(item)
		}
	}
	return nil
}
