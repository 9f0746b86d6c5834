package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/config"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/logging"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/relay"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/server"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/session"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/store"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/twitch"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Handle hash-password subcommand before anything else.
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		hashPassword()
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// hashPassword reads a key from stdin and prints its bcrypt hash, for
// the ADMIN_KEY_HASH setting.
func hashPassword() {
	fmt.Fprint(os.Stderr, "Enter admin key: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		fmt.Fprintln(os.Stderr, "no input")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(scanner.Text()), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	db, err := store.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.ApplicationsFile != "" {
		if err := db.ImportSeed(cfg.ApplicationsFile); err != nil {
			return fmt.Errorf("importing applications file: %w", err)
		}

		logger.Info("applications file imported", slog.String("path", cfg.ApplicationsFile))
	}

	states := relay.NewStateStore()
	defer states.Stop()

	sessions := session.NewManager(cfg.SessionMaxAge, cfg.IsProduction())
	defer sessions.Stop()

	registry := relay.NewRegistry()
	provider := twitch.NewClient(nil, cfg.TwitchClientID, cfg.TwitchClientSecret)

	mux := server.NewMux(server.MuxConfig{
		States:         states,
		Registry:       registry,
		Store:          db,
		Sessions:       sessions,
		Provider:       provider,
		Logger:         logger,
		Domain:         cfg.Domain,
		AdminKeyHash:   cfg.AdminKeyHash,
		TwitchClientID: cfg.TwitchClientID,
	})

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server",
			slog.String("listen", cfg.ListenAddr),
			slog.String("domain", cfg.Domain),
			slog.Bool("admin_api", cfg.AdminKeyHash != ""),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	if cfg.ApplicationsFile != "" {
		g.Go(func() error {
			err := db.WatchSeed(gctx, cfg.ApplicationsFile, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
