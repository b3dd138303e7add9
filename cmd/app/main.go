package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BuzzLyutic/task-manager-web/internal/config"
	"github.com/BuzzLyutic/task-manager-web/internal/handler"
	"github.com/BuzzLyutic/task-manager-web/internal/repo"
	"github.com/BuzzLyutic/task-manager-web/internal/service"
	"github.com/BuzzLyutic/task-manager-web/internal/storage"
	"github.com/BuzzLyutic/task-manager-web/internal/view"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	debug      bool
)

func main() {
	root := &cobra.Command{
		Use:           "taskmanager",
		Short:         "Task manager web application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	serve.Flags().BoolVar(&debug, "debug", false, "development logging")

	export := &cobra.Command{
		Use:   "export",
		Short: "Print the stored task list as JSON",
		RunE:  runExport,
	}

	root.AddCommand(serve, export)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore загружает конфигурацию, открывает хранилище и читает задачи.
func openStore(ctx context.Context) (config.Config, storage.Storage, *repo.TaskStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, nil, err
	}

	st, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		DatabaseURL: cfg.Storage.DatabaseURL,
	})
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("open storage: %w", err)
	}

	store := repo.NewTaskStore(st, repo.WithKey(cfg.Storage.Key))
	if err := store.Load(ctx); err != nil {
		st.Close()
		return cfg, nil, nil, fmt.Errorf("load tasks: %w", err)
	}
	return cfg, st, store, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Подключаем логгер
	logger, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, st, store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("Storage ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("key", cfg.Storage.Key),
	)

	renderer, err := view.NewRenderer(cfg.AppName)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	srv := service.NewTaskService(store)
	r := handler.NewRouter(
		handler.NewTaskHandler(srv, logger),
		handler.NewBoardHandler(srv, renderer, logger),
		logger,
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	// Последняя запись: после неудачного Put память могла уйти вперед хранилища
	if err := store.Save(ctx); err != nil {
		logger.Error("Final save failed", zap.Error(err))
	}
	logger.Info("Server stopped successfully")
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	_, st, store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := store.Export(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
