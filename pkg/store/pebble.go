// Package store persists per-user hunt progress in an embedded Pebble
// database. One JSON record per user under "hunt:user:<id>", written with
// a conditional version check so concurrent submissions from the same
// user cannot both commit against a stale record.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"huntd/pkg/logger"
	"huntd/pkg/models"
)

const userKeyPrefix = "hunt:user:"

var (
	// ErrVersionConflict reports a conditional save against a stale
	// version. Expected under same-user concurrency; callers retry.
	ErrVersionConflict = errors.New("progress version conflict")
	// ErrNotFound reports a missing record where lazy defaulting does not
	// apply (admin lookups).
	ErrNotFound = errors.New("progress record not found")
)

var (
	db     *pebble.DB
	dbPath string

	firstOrdinal = 1

	// commitMu serializes the read-compare-write of CompareAndSaveProgress
	// per user key.
	commitMu struct {
		sync.Mutex
		m map[string]*sync.Mutex
	}
)

// Open opens (or creates) the Pebble database at path and keeps a global
// handle, the way the rest of the server consumes this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	commitMu.Lock()
	commitMu.m = make(map[string]*sync.Mutex)
	commitMu.Unlock()
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool { return db != nil }

// SetFirstOrdinal sets the ordinal new records start on. Called once at
// startup from the validated key sequence.
func SetFirstOrdinal(o int) { firstOrdinal = o }

func userKey(userID string) []byte { return []byte(userKeyPrefix + userID) }

func lockFor(userID string) *sync.Mutex {
	commitMu.Lock()
	defer commitMu.Unlock()
	if commitMu.m == nil {
		commitMu.m = make(map[string]*sync.Mutex)
	}
	mu, ok := commitMu.m[userID]
	if !ok {
		mu = &sync.Mutex{}
		commitMu.m[userID] = mu
	}
	return mu
}

func getProgress(userID string) (*models.Progress, error) {
	val, closer, err := db.Get(userKey(userID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load progress %s: %w", userID, err)
	}
	defer closer.Close()
	var p models.Progress
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, fmt.Errorf("decode progress %s: %w", userID, err)
	}
	return &p, nil
}

// LoadProgress returns the user's record, or a default unsaved record
// (Version 0) when none exists yet. Records are created lazily: a user
// has no row until their first submission commits. The caller supplies
// now so the default's CreatedAt matches the engine clock.
func LoadProgress(userID string, now time.Time) (*models.Progress, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	p, err := getProgress(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &models.Progress{
		UserID:         userID,
		CurrentOrdinal: firstOrdinal,
		CreatedAt:      now.Unix(),
	}, nil
}

// GetProgress returns the user's persisted record without lazy
// defaulting; absent records yield ErrNotFound.
func GetProgress(userID string) (*models.Progress, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	return getProgress(userID)
}

// CompareAndSaveProgress writes rec only if the stored version still
// equals expectedVersion (0 meaning "no record yet"). On success the
// stored record carries expectedVersion+1. Returns ErrVersionConflict
// when another writer got there first.
func CompareAndSaveProgress(userID string, expectedVersion uint64, rec *models.Progress) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	mu := lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	current, err := getProgress(userID)
	switch {
	case errors.Is(err, ErrNotFound):
		if expectedVersion != 0 {
			return ErrVersionConflict
		}
	case err != nil:
		return err
	default:
		if current.Version != expectedVersion {
			return ErrVersionConflict
		}
	}

	saved := rec.Clone()
	saved.UserID = userID
	saved.Version = expectedVersion + 1
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encode progress %s: %w", userID, err)
	}
	if err := db.Set(userKey(userID), data, pebble.Sync); err != nil {
		logger.Error("save_progress_failed", "user", userID, "error", err)
		return fmt.Errorf("save progress %s: %w", userID, err)
	}
	return nil
}

// DeleteProgress removes a user's record. Used by the staff reset action;
// deleting an absent record is not an error.
func DeleteProgress(userID string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	mu := lockFor(userID)
	mu.Lock()
	defer mu.Unlock()
	if err := db.Delete(userKey(userID), pebble.Sync); err != nil {
		return fmt.Errorf("delete progress %s: %w", userID, err)
	}
	logger.Info("progress_deleted", "user", userID)
	return nil
}

// ListProgress returns every persisted record. Stats and the suspicion
// sweep consume this; hunts are small enough to scan.
func ListProgress() ([]*models.Progress, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(userKeyPrefix),
		UpperBound: []byte(userKeyPrefix + "\xff"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []*models.Progress
	for iter.First(); iter.Valid(); iter.Next() {
		var p models.Progress
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			logger.Warn("skip_undecodable_progress", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, &p)
	}
	return out, iter.Error()
}
