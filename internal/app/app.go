package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"todoService/internal/config"
	"todoService/internal/handlers"
	"todoService/internal/logger"
	"todoService/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     http.Handler
	repository service.TodoRepository // интерфейс!
	service    handlers.Service
	shutdowns  []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	repo, closeRepo, err := connectRepository(ctx, a.config)
	if err != nil {
		return nil, fmt.Errorf("подключение репозитория %s: %w", a.config.Repository.Type, err)
	}
	a.repository = repo
	// репозиторий закрывается раньше логгера
	a.shutdowns = append([]func(){closeRepo}, a.shutdowns...)

	svc := service.NewTodoService(repo, service.RepoType(a.config.Repository.Type))
	a.service = &svc

	handler := handlers.NewTodoHandler(a.service, a.config.Repository.Type)
	a.router = NewRouter(a.config.Server, handler)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr),
	)
	return a, nil
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Shutdown()
	return err
}

// Shutdown освобождает ресурсы в порядке регистрации
func (a *App) Shutdown() {
	for _, fn := range a.shutdowns {
		fn()
	}
	a.shutdowns = nil
}
