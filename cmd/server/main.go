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

	"github.com/rs/cors"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/api"
	"github.com/tahcohcat/healplay/internal/auth"
	"github.com/tahcohcat/healplay/internal/catalog"
	"github.com/tahcohcat/healplay/internal/coach"
	"github.com/tahcohcat/healplay/internal/database"
	"github.com/tahcohcat/healplay/internal/llm"
	"github.com/tahcohcat/healplay/internal/logger"
	"github.com/tahcohcat/healplay/internal/services"
	"github.com/tahcohcat/healplay/internal/tts"
	"github.com/tahcohcat/healplay/internal/websocket"
)

func main() {
	log := logger.New()
	if err := run(); err != nil {
		log.WithError(err).Error("Server stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	games, err := catalog.New(cfg.Games)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	goodieService := services.NewGoodieService(db, hub)
	progressService := services.NewProgressService(db)
	badgeService := services.NewBadgeService(db)
	if err := badgeService.SeedFromGames(ctx, games.List()); err != nil {
		return fmt.Errorf("failed to seed badges: %w", err)
	}

	client, err := llm.NewLLMClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	if client != nil {
		if err := client.IsModelAvailable(ctx); err != nil {
			log.WithError(err).Warn("Coach model unavailable, falling back to built-in feedback")
			client = nil
		}
	}

	synth, err := tts.New(ctx, cfg.Tts)
	if err != nil {
		log.WithError(err).Warn("Speech disabled")
		synth = nil
	}
	if closer, ok := synth.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	gameHandler := api.NewGameHandler(games, progressService, coach.New(client, 0), cfg.Games.SessionTTL)
	go gameHandler.Run(ctx)

	srv := &api.Server{
		Auth:    auth.New(cfg.Auth),
		Games:   gameHandler,
		Goodies: api.NewGoodieHandler(goodieService),
		Badges:  api.NewBadgeHandler(badgeService),
		Speech:  api.NewSpeechHandler(synth),
		Events:  hub,
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(srv.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("HealPlay server listening on :%s (%d games)", cfg.Server.Port, len(games.List())))
		log.Debug(fmt.Sprintf("Database: %s", cfg.Database.Path))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
