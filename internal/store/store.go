// Package store persists applications and users in a bbolt database.
// It backs every lookup the relay handlers perform: application by
// public URI, application by id, user by bearer token.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/text/unicode/norm"

	apperrors "github.com/PythonistaGuild/twitchio-token-relay/internal/errors"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/models"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/relay"
)

const (
	// storeDirPerm is the permission mode for the database directory.
	storeDirPerm = fs.FileMode(0o700)

	// storeFilePerm is the permission mode for the database file.
	storeFilePerm = fs.FileMode(0o600)

	// storeOpenTimeout is the maximum time to wait for the bolt database lock.
	storeOpenTimeout = 5 * time.Second

	// appIDBytes and tokenBytes size the generated identifiers.
	appIDBytes = 16
	tokenBytes = 32
)

var (
	applicationsBucket = []byte("applications")
	appURIBucket       = []byte("app_uri_index")
	usersBucket        = []byte("users")
	userTwitchBucket   = []byte("user_twitch_index")
	userTokensBucket   = []byte("user_tokens")
)

// tokenKeyHash returns the SHA-256 hex digest of a bearer token.
// Used as the bbolt key so raw tokens are not stored on disk.
func tokenKeyHash(token string) []byte {
	h := sha256.Sum256([]byte(token))
	dst := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(dst, h[:])

	return dst
}

// Store wraps a bbolt database holding applications and users.
type Store struct {
	db *bolt.DB
}

// Open opens the database at the given path, creating it and all
// buckets if they do not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bolt.Open(path, storeFilePerm, &bolt.Options{Timeout: storeOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{
			applicationsBucket,
			appURIBucket,
			usersBucket,
			userTwitchBucket,
			userTokensBucket,
		} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateApplication persists a new application. A missing ID is
// generated; the name is NFC-normalized so lookups and display agree
// on one representation. The public URI must be unique across all
// applications.
func (s *Store) CreateApplication(app models.Application) (*models.Application, error) {
	if app.URI == "" {
		return nil, fmt.Errorf("application uri is required")
	}

	if app.ID == "" {
		app.ID = relay.RandomHex(appIDBytes)
	}
	app.Name = norm.NFC.String(app.Name)

	err := s.db.Update(func(tx *bolt.Tx) error {
		uris := tx.Bucket(appURIBucket)

		if existing := uris.Get([]byte(app.URI)); existing != nil && string(existing) != app.ID {
			return fmt.Errorf("application uri %q is already registered", app.URI)
		}

		data, err := json.Marshal(app)
		if err != nil {
			return err
		}

		if err := tx.Bucket(applicationsBucket).Put([]byte(app.ID), data); err != nil {
			return err
		}

		return uris.Put([]byte(app.URI), []byte(app.ID))
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// ApplicationByID returns the application with the given id.
func (s *Store) ApplicationByID(id string) (*models.Application, error) {
	var app *models.Application

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(applicationsBucket).Get([]byte(id))
		if v == nil {
			return apperrors.ErrApplicationNotFound
		}

		app = &models.Application{}

		return json.Unmarshal(v, app)
	})
	if err != nil {
		return nil, err
	}

	return app, nil
}

// ApplicationByURI returns the application registered under the given
// public URI segment.
func (s *Store) ApplicationByURI(uri string) (*models.Application, error) {
	var app *models.Application

	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(appURIBucket).Get([]byte(uri))
		if id == nil {
			return apperrors.ErrApplicationNotFound
		}

		v := tx.Bucket(applicationsBucket).Get(id)
		if v == nil {
			return apperrors.ErrApplicationNotFound
		}

		app = &models.Application{}

		return json.Unmarshal(v, app)
	})
	if err != nil {
		return nil, err
	}

	return app, nil
}

// ApplicationsByUser returns all applications owned by a user.
func (s *Store) ApplicationsByUser(userID string) ([]models.Application, error) {
	var apps []models.Application

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(applicationsBucket).ForEach(func(k, v []byte) error {
			var app models.Application
			if err := json.Unmarshal(v, &app); err != nil {
				return err
			}

			if app.UserID == userID {
				apps = append(apps, app)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// Applications returns all registered applications.
func (s *Store) Applications() ([]models.Application, error) {
	var apps []models.Application

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(applicationsBucket).ForEach(func(k, v []byte) error {
			var app models.Application
			if err := json.Unmarshal(v, &app); err != nil {
				return err
			}

			apps = append(apps, app)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// DeleteApplication removes an application and its URI index entry.
// Deleting an unknown id is not an error.
func (s *Store) DeleteApplication(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		v := tx.Bucket(applicationsBucket).Get([]byte(id))
		if v == nil {
			return nil
		}

		var app models.Application
		if err := json.Unmarshal(v, &app); err != nil {
			return err
		}

		if err := tx.Bucket(appURIBucket).Delete([]byte(app.URI)); err != nil {
			return err
		}

		return tx.Bucket(applicationsBucket).Delete([]byte(id))
	})
}

// RecordAuth increments the authorization counter for an application.
func (s *Store) RecordAuth(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(applicationsBucket)

		v := b.Get([]byte(id))
		if v == nil {
			return apperrors.ErrApplicationNotFound
		}

		var app models.Application
		if err := json.Unmarshal(v, &app); err != nil {
			return err
		}

		app.Auths++

		data, err := json.Marshal(app)
		if err != nil {
			return err
		}

		return b.Put([]byte(id), data)
	})
}

// UpsertUser creates or updates a user keyed by Twitch id. An existing
// user keeps their internal id; the display name is refreshed on every
// login.
func (s *Store) UpsertUser(user models.User) (*models.User, error) {
	if user.TwitchID == "" {
		return nil, fmt.Errorf("user twitch id is required")
	}
	user.Name = norm.NFC.String(user.Name)

	err := s.db.Update(func(tx *bolt.Tx) error {
		twitch := tx.Bucket(userTwitchBucket)

		if id := twitch.Get([]byte(user.TwitchID)); id != nil {
			user.ID = string(id)
		} else if user.ID == "" {
			user.ID = relay.RandomHex(appIDBytes)
		}

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}

		if err := tx.Bucket(usersBucket).Put([]byte(user.ID), data); err != nil {
			return err
		}

		return twitch.Put([]byte(user.TwitchID), []byte(user.ID))
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UserByID returns the user with the given internal id.
func (s *Store) UserByID(id string) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(usersBucket).Get([]byte(id))
		if v == nil {
			return apperrors.ErrUserNotFound
		}

		user = &models.User{}

		return json.Unmarshal(v, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UserByToken returns the user owning the given bearer token. Only the
// token hash is compared; raw tokens never reach disk.
func (s *Store) UserByToken(token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.ErrUserNotFound
	}

	var user *models.User

	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(userTokensBucket).Get(tokenKeyHash(token))
		if id == nil {
			return apperrors.ErrUserNotFound
		}

		v := tx.Bucket(usersBucket).Get(id)
		if v == nil {
			return apperrors.ErrUserNotFound
		}

		user = &models.User{}

		return json.Unmarshal(v, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SetUserToken issues a fresh bearer token for a user, invalidating
// any previous one. The raw token is returned exactly once and cannot
// be recovered later.
func (s *Store) SetUserToken(userID string) (string, error) {
	token := relay.RandomHex(tokenBytes)

	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(usersBucket).Get([]byte(userID)) == nil {
			return apperrors.ErrUserNotFound
		}

		tokens := tx.Bucket(userTokensBucket)

		// Drop any existing token for this user so rotation revokes
		// the old credential.
		var stale [][]byte
		err := tokens.ForEach(func(k, v []byte) error {
			if string(v) == userID {
				stale = append(stale, append([]byte(nil), k...))
			}

			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := tokens.Delete(k); err != nil {
				return err
			}
		}

		return tokens.Put(tokenKeyHash(token), []byte(userID))
	})
	if err != nil {
		return "", err
	}

	return token, nil
}
