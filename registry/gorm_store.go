package registry

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blackhole-core/agentmesh/types"
)

// GormStore persists agent configs in a relational database via GORM.
// Slice and map fields use the JSON serializer, so the same model works on
// sqlite and postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed store and ensures the schema exists.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("gorm store requires a database handle")
	}
	if err := db.AutoMigrate(&types.AgentConfig{}); err != nil {
		return nil, fmt.Errorf("migrate agent_configs: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Load reads all configs ordered by creation time, so registry insertion
// order survives a restart.
func (s *GormStore) Load(ctx context.Context) ([]types.AgentConfig, error) {
	var configs []types.AgentConfig
	err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("load agent configs from database: %w", err)
	}
	return configs, nil
}

// Save upserts one config by primary key.
func (s *GormStore) Save(ctx context.Context, cfg types.AgentConfig) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("save agent config %q: %w", cfg.ID, err)
	}
	return nil
}

// Delete removes one config by id. Deleting a missing id is not an error.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Delete(&types.AgentConfig{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("delete agent config %q: %w", id, err)
	}
	return nil
}
