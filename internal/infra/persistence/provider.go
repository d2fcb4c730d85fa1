// Package persistence selects the storage backend named by storage.driver.
package persistence

import (
	"log/slog"

	"quill/config"
	"quill/internal/domain/repository"
	"quill/internal/infra/persistence/memory"
	"quill/internal/infra/persistence/mongo"
	"quill/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the repositories, injected by Fx
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Repositories are the repositories of the selected backend.
type Repositories struct {
	fx.Out

	Users repository.UserRepository
	Posts repository.PostRepository
}

// NewRepositories connects to the configured backend and builds its repositories.
func NewRepositories(params Params) (Repositories, error) {
	driver := params.Config.Storage.Driver
	logger := params.Logger.With(slog.String("driver", driver))

	switch driver {
	case config.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}
		logger.Info("Using PostgreSQL storage")

		return Repositories{
			Users: postgres.NewUserRepository(db),
			Posts: postgres.NewPostRepository(db),
		}, nil

	case config.StorageDriverMongo:
		db, err := mongo.New(mongo.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}
		logger.Info("Using MongoDB storage")

		return Repositories{
			Users: mongo.NewUserRepository(db),
			Posts: mongo.NewPostRepository(db),
		}, nil

	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()

		return Repositories{
			Users: memory.NewUserRepository(store),
			Posts: memory.NewPostRepository(store),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown storage driver: %s", driver)
	}
}
