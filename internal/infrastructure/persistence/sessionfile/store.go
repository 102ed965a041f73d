// Package sessionfile persists sessions as a single JSON document on
// disk. The whole map lives in memory; every mutation rewrites the file
// atomically. Suited to the bot's scale of hundreds of sessions.
package sessionfile

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// StoreConfig contains configuration for the file store.
type StoreConfig struct {
	// Path is the session file location. The parent directory must exist.
	Path string

	// SealKeyHex, when non-empty, enables at-rest encryption of the file.
	// Must be 64 hex characters (a 32-byte XChaCha20-Poly1305 key).
	SealKeyHex string

	// Logger for structured logging.
	Logger *slog.Logger
}

// Store is a file-backed session.Store.
type Store struct {
	path   string
	sealed [32]byte
	seal   bool
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[session.Key]*session.Record
}

var _ session.Store = (*Store)(nil)

// NewStore loads the session file (if present) and returns a ready store.
func NewStore(config StoreConfig) (*Store, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Store{
		path:     config.Path,
		logger:   config.Logger,
		sessions: make(map[session.Key]*session.Record),
	}

	if config.SealKeyHex != "" {
		key, err := hex.DecodeString(config.SealKeyHex)
		if err != nil || len(key) != chacha20poly1305.KeySize {
			return nil, errors.New("sessionfile: seal key must be 64 hex characters")
		}
		copy(s.sealed[:], key)
		s.seal = true
	}

	if err := s.load(); err != nil {
		return nil, fmt.Errorf("sessionfile: load %s: %w", config.Path, err)
	}
	return s, nil
}

// Get returns the record for a key.
func (s *Store) Get(ctx context.Context, key session.Key) (*session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return record.Clone(), nil
}

// Put stores a record under a key, replacing any previous one.
func (s *Store) Put(ctx context.Context, key session.Key, record *session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = record.Clone()
	return s.flush()
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key session.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[key]; !ok {
		return nil
	}
	delete(s.sessions, key)
	return s.flush()
}

// Copy duplicates the record under from to the key to, by value.
func (s *Store) Copy(ctx context.Context, from, to session.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[from]
	if !ok {
		return shared.ErrNotFound
	}
	s.sessions[to] = record.Clone()
	return s.flush()
}

// Keys lists every stored session key.
func (s *Store) Keys(ctx context.Context) ([]session.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]session.Key, 0, len(s.sessions))
	for key := range s.sessions {
		keys = append(keys, key)
	}
	return keys, nil
}

// load reads the session file into memory. A missing file is a fresh
// start, not an error.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	if s.seal {
		data, err = s.open(data)
		if err != nil {
			return fmt.Errorf("unseal: %w", err)
		}
	}

	if err := json.Unmarshal(data, &s.sessions); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	s.logger.Info("sessions loaded", "path", s.path, "count", len(s.sessions))
	return nil
}

// flush rewrites the file via a temp file and rename so a crash mid-write
// never leaves a truncated session file. Callers hold the write lock.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	if s.seal {
		data, err = s.sealBytes(data)
		if err != nil {
			return fmt.Errorf("seal sessions: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

// sealBytes encrypts plaintext with a fresh random nonce prepended.
func (s *Store) sealBytes(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.sealed[:])
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts a sealed file body.
func (s *Store) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.sealed[:])
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("sealed data too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
