package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/models"
)

// SeedFile is the on-disk shape of an applications file. Users are
// matched by Twitch id so re-importing the same file is a no-op, and
// applications reference their owner the same way.
type SeedFile struct {
	Users        []SeedUser        `yaml:"users"`
	Applications []SeedApplication `yaml:"applications"`
}

// SeedUser pre-registers a dashboard user. An optional token lets a
// bot connect its websocket without a browser login having happened.
type SeedUser struct {
	TwitchID string `yaml:"twitch_id"`
	Name     string `yaml:"name"`
	Token    string `yaml:"token,omitempty"`
}

// SeedApplication pre-registers an application under a user's Twitch id.
type SeedApplication struct {
	UserTwitchID string `yaml:"user_twitch_id"`
	ClientID     string `yaml:"client_id"`
	Name         string `yaml:"name"`
	URI          string `yaml:"uri"`
	Scopes       string `yaml:"scopes,omitempty"`
	BotScopes    string `yaml:"bot_scopes,omitempty"`
}

// ImportSeed reads a YAML applications file and upserts its users and
// applications. The import is idempotent: users are matched by Twitch
// id and applications by public URI, so existing entries keep their
// ids across re-imports.
func (s *Store) ImportSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	// Twitch id -> internal user id, for application ownership below.
	userIDs := make(map[string]string, len(seed.Users))

	for _, su := range seed.Users {
		user, err := s.UpsertUser(models.User{TwitchID: su.TwitchID, Name: su.Name})
		if err != nil {
			return fmt.Errorf("seeding user %q: %w", su.TwitchID, err)
		}

		userIDs[su.TwitchID] = user.ID

		if su.Token != "" {
			if err := s.putToken(user.ID, su.Token); err != nil {
				return fmt.Errorf("seeding token for user %q: %w", su.TwitchID, err)
			}
		}
	}

	for _, sa := range seed.Applications {
		userID, ok := userIDs[sa.UserTwitchID]
		if !ok {
			user, err := s.userByTwitchID(sa.UserTwitchID)
			if err != nil {
				return fmt.Errorf("seeding application %q: owner twitch id %q is not registered", sa.URI, sa.UserTwitchID)
			}

			userID = user.ID
		}

		app := models.Application{
			UserID:    userID,
			ClientID:  sa.ClientID,
			Name:      sa.Name,
			URI:       sa.URI,
			Scopes:    sa.Scopes,
			BotScopes: sa.BotScopes,
		}

		// Keep the existing id (and auth counter) when the URI is
		// already registered.
		if existing, err := s.ApplicationByURI(sa.URI); err == nil {
			app.ID = existing.ID
			app.Auths = existing.Auths
		}

		if _, err := s.CreateApplication(app); err != nil {
			return fmt.Errorf("seeding application %q: %w", sa.URI, err)
		}
	}

	return nil
}

// putToken stores a caller-provided bearer token for a user. Seed-only;
// rotation through the API always generates fresh tokens.
func (s *Store) putToken(userID, token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(userTokensBucket).Put(tokenKeyHash(token), []byte(userID))
	})
}

// userByTwitchID resolves a user through the Twitch id index.
func (s *Store) userByTwitchID(twitchID string) (*models.User, error) {
	var id string

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(userTwitchBucket).Get([]byte(twitchID))
		if v != nil {
			id = string(v)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if id == "" {
		return nil, fmt.Errorf("no user for twitch id %q", twitchID)
	}

	return s.UserByID(id)
}

// WatchSeed re-imports the seed file whenever it changes on disk. The
// parent directory is watched rather than the file itself so editors
// that replace the file (write temp, rename over) keep triggering
// reloads. Blocks until the context is cancelled.
func (s *Store) WatchSeed(ctx context.Context, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching seed directory: %w", err)
	}

	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed")
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}

			if err := s.ImportSeed(path); err != nil {
				logger.Warn("seed reload failed",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)

				continue
			}

			logger.Info("seed file reloaded", slog.String("path", path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed")
			}

			logger.Warn("seed watcher error", slog.String("error", err.Error()))
		}
	}
}
