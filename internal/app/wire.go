//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/vocabulearn/internal/adapter/repository"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/logging"
	"github.com/eslsoft/vocabulearn/internal/usecase"
	"github.com/eslsoft/vocabulearn/internal/usecase/backup"
)

var infrastructureSet = wire.NewSet(
	logging.NewLogger,
	NewRand,
)

var repositorySet = wire.NewSet(
	repository.NewVocabRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewVocabUsecase,
	usecase.NewQuestionGenerator,
	backup.NewService,
)

// Initialize builds the application container using Wire.
func Initialize(cfg *config.Config) (*Container, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		usecaseSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
