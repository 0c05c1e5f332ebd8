package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"learnlab/internal/services"
)

const keyPrefix = "podcast:"

// Bundle is the full response for a previously generated podcast, written
// once per successful publish and read-only thereafter.
type Bundle struct {
	Topic      string   `json:"topic"`
	Script     string   `json:"script"`
	Transcript []string `json:"conversation_history"`
	DocumentID string   `json:"source_document"`
	AudioURL   string   `json:"audio_url"`
	Answer     string   `json:"answer"`
	Evidence   []string `json:"evidence"`
	CreatedAt  string   `json:"created_at"`
}

// Store persists podcast bundles in BadgerDB, keyed by an opaque composite of
// (question, document identifier).
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open initializes or connects to the cache database in dir. A non-zero ttl
// expires entries; zero keeps them until explicitly cleared.
func Open(dir string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get looks up the bundle for a (question, document identifier) pair. The
// second return value reports whether an entry was found.
func (s *Store) Get(question, documentID string) (*Bundle, bool, error) {
	var bundle Bundle
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(question, documentID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &bundle)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, services.Wrap(services.ErrTransient, "cache", "get", "lookup failed", err)
	}
	return &bundle, true, nil
}

// Put writes the bundle for a (question, document identifier) pair. Entries
// are written once per successful podcast generation.
func (s *Store) Put(question, documentID string, bundle *Bundle) error {
	if bundle == nil {
		return services.Wrap(services.ErrValidation, "cache", "put", "bundle required", nil)
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("cache put: marshal bundle: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(Key(question, documentID), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "cache", "put", "write failed", err)
	}
	return nil
}

// Entries returns every cached bundle, for cache administration.
func (s *Store) Entries() ([]*Bundle, error) {
	var bundles []*Bundle
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var bundle Bundle
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &bundle)
			})
			if err != nil {
				return err
			}
			bundles = append(bundles, &bundle)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "cache", "entries", "scan failed", err)
	}
	return bundles, nil
}

// Clear removes every cached bundle and reports how many were dropped.
func (s *Store) Clear() (int, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "cache", "clear", "scan failed", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "cache", "clear", "delete failed", err)
	}
	return len(keys), nil
}

// Key builds the opaque composite cache key for a question/document pair.
func Key(question, documentID string) []byte {
	digest := sha256.Sum256([]byte(strings.TrimSpace(question) + "\x00" + strings.TrimSpace(documentID)))
	return []byte(keyPrefix + hex.EncodeToString(digest[:]))
}
