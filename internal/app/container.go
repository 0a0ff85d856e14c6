package app

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/repository"
	"github.com/eslsoft/vocabulearn/internal/usecase"
	"github.com/eslsoft/vocabulearn/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Repo      repository.VocabRepository
	Vocab     usecase.VocabUsecase
	Questions *usecase.QuestionGenerator
	Backup    *backup.Service
}

// NewRand returns the process random source. quiz.seed pins it for
// reproducible sessions; zero seeds from the runtime.
func NewRand(cfg *config.Config) *rand.Rand {
	if cfg.Quiz.Seed != 0 {
		return rand.New(rand.NewPCG(cfg.Quiz.Seed, cfg.Quiz.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
