package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/database"
	repo "github.com/eslsoft/vocabulearn/internal/repository"
)

// PathsFromConfig resolves the flat-file dataset locations.
func PathsFromConfig(cfg *config.Config) FilePaths {
	return FilePaths{
		Vocab:   cfg.VocabPath(),
		Labels:  cfg.LabelsPath(),
		Mapping: cfg.MappingPath(),
	}
}

// NewVocabRepository opens the store selected by storage.driver. SQL stores
// are migrated before use.
func NewVocabRepository(cfg *config.Config, logger *logrus.Logger) (repo.VocabRepository, func(), error) {
	if cfg.DatabaseDriver() == config.DriverCSV {
		r, err := NewFileVocabRepository(PathsFromConfig(cfg), logger)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	}

	conn, cleanup, err := database.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, conn); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("prepare %s store: %w", cfg.DatabaseDriver(), err)
	}
	return NewSQLVocabRepository(conn, logger), cleanup, nil
}
