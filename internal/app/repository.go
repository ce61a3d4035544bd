package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoService/internal/config"
	"todoService/internal/logger"
	"todoService/internal/repository/todo/inmemory"
	"todoService/internal/repository/todo/mongodb"
	"todoService/internal/repository/todo/postgres"
	"todoService/internal/service"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const closeTimeout = 5 * time.Second

// connectRepository выбирает хранилище по конфигу и подключается к нему,
// повторяя попытки с экспоненциальной задержкой до database.connect_timeout
func connectRepository(ctx context.Context, cfg *config.Config) (service.TodoRepository, func(), error) {
	switch cfg.Repository.Type {
	case config.RepositoryInMemory:
		return inmemory.NewTodoStorage(), func() {}, nil

	case config.RepositoryMongo:
		storage, err := withRetry(ctx, cfg.Database.ConnectTimeout, func(ctx context.Context) (*mongodb.Storage, error) {
			return mongodb.New(ctx, cfg.Database.MongoURI(), cfg.Database.Name, cfg.Database.Collection)
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			logger.Info("Отключение от MongoDB...")
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			if err := storage.Close(ctx); err != nil {
				logger.Error("Repository: Ошибка отключения от MongoDB", err)
			}
		}
		return storage, closeFn, nil

	case config.RepositoryPostgres:
		storage, err := withRetry(ctx, cfg.Database.ConnectTimeout, func(ctx context.Context) (*postgres.Storage, error) {
			return postgres.New(ctx, cfg.Database.PostgresURL)
		})
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return nil, nil, fmt.Errorf("миграции: %w", err)
		}
		closeFn := func() {
			logger.Info("Закрытие пула PostgreSQL...")
			storage.Close()
		}
		return storage, closeFn, nil
	}

	return nil, nil, fmt.Errorf("неизвестный тип репозитория %q", cfg.Repository.Type)
}

func withRetry[T any](ctx context.Context, maxElapsed time.Duration, connect func(context.Context) (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = maxElapsed

	var result T
	attempt := 0
	operation := func() error {
		attempt++
		var err error
		result, err = connect(ctx)
		if err != nil && errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("Repository: Не удалось подключиться, повтор",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
