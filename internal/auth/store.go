package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"

	"github.com/evetools/esi-cli/internal/output"
)

const (
	serviceName = "esi-cli"
	keyringItem = "esi::tokens"
)

// TokenRecord holds OAuth tokens and character identity for one character.
type TokenRecord struct {
	CharacterID   int64    `json:"character_id"`
	CharacterName string   `json:"character_name"`
	AccessToken   string   `json:"access_token"`
	RefreshToken  string   `json:"refresh_token"`
	ExpiresAt     int64    `json:"expires_at"`
	Scopes        []string `json:"scopes,omitempty"`
	TokenType     string   `json:"token_type,omitempty"`
	OwnerHash     string   `json:"owner_hash,omitempty"`
}

// Expired reports whether the access token is past, or within margin of,
// its expiry time.
func (r *TokenRecord) Expired(margin time.Duration) bool {
	return time.Now().Add(margin).Unix() >= r.ExpiresAt
}

// Store persists token records keyed by character id. The system keychain is
// preferred when available; otherwise records live in a single JSON file,
// rewritten in full on every mutation with an advisory lock held so separate
// processes sharing one token file do not interleave writes.
type Store struct {
	useKeyring bool
	path       string
}

// NewStore creates a token store backed by the given file path.
func NewStore(path string) *Store {
	if os.Getenv("ESI_NO_KEYRING") != "" {
		return &Store{useKeyring: false, path: path}
	}

	// Probe keyring availability
	testKey := "esi::probe"
	if err := keyring.Set(serviceName, testKey, "probe"); err == nil {
		_ = keyring.Delete(serviceName, testKey)
		return &Store{useKeyring: true, path: path}
	}
	log.Debugf("system keyring unavailable, tokens stored in plaintext at %s", path)
	return &Store{useKeyring: false, path: path}
}

// Get retrieves the record for a character.
func (s *Store) Get(characterID int64) (*TokenRecord, error) {
	all, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	rec, ok := all[recordKey(characterID)]
	if !ok {
		return nil, output.ErrTokenNotFound(characterID)
	}
	return rec, nil
}

// Save upserts the record and rewrites the backing store.
func (s *Store) Save(rec *TokenRecord) error {
	if rec == nil || rec.CharacterID == 0 {
		return fmt.Errorf("refusing to store token without character id")
	}
	return s.update(func(all map[string]*TokenRecord) error {
		all[recordKey(rec.CharacterID)] = rec
		return nil
	})
}

// Delete removes the record for a character. A missing record reports
// token-not-found so callers can tell a no-op from a removal.
func (s *Store) Delete(characterID int64) error {
	return s.update(func(all map[string]*TokenRecord) error {
		key := recordKey(characterID)
		if _, ok := all[key]; !ok {
			return output.ErrTokenNotFound(characterID)
		}
		delete(all, key)
		return nil
	})
}

// List returns the character ids with stored tokens, sorted for stable output.
func (s *Store) List() ([]int64, error) {
	all, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(all))
	for key := range all {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			log.Warnf("skipping malformed character id %q in token store", key)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// UsingKeyring reports whether tokens are held in the system keychain.
func (s *Store) UsingKeyring() bool {
	return s.useKeyring
}

// Path returns the token file path used by the file backend.
func (s *Store) Path() string {
	return s.path
}

func recordKey(characterID int64) string {
	return strconv.FormatInt(characterID, 10)
}

// update runs a read-modify-write cycle under the file lock.
func (s *Store) update(mutate func(map[string]*TokenRecord) error) error {
	if s.useKeyring {
		all, err := s.loadAll()
		if err != nil {
			return err
		}
		if err := mutate(all); err != nil {
			return err
		}
		return s.saveKeyring(all)
	}

	lock := flock.New(s.path + ".lock")
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock token file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	all, err := s.loadFile()
	if err != nil {
		return err
	}
	if err := mutate(all); err != nil {
		return err
	}
	return s.saveFile(all)
}

func (s *Store) loadAll() (map[string]*TokenRecord, error) {
	if s.useKeyring {
		return s.loadKeyring()
	}
	return s.loadFile()
}

// Keyring backend: the whole character→record map lives in one keychain item
// so List and Delete behave identically across backends.

func (s *Store) loadKeyring() (map[string]*TokenRecord, error) {
	data, err := keyring.Get(serviceName, keyringItem)
	if err != nil {
		if err == keyring.ErrNotFound {
			return make(map[string]*TokenRecord), nil
		}
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	var all map[string]*TokenRecord
	if err := json.Unmarshal([]byte(data), &all); err != nil {
		return nil, fmt.Errorf("invalid keyring token data: %w", err)
	}
	return all, nil
}

func (s *Store) saveKeyring(all map[string]*TokenRecord) error {
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, keyringItem, string(data))
}

// File backend.

func (s *Store) loadFile() (map[string]*TokenRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*TokenRecord), nil
		}
		return nil, err
	}

	var all map[string]*TokenRecord
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", s.path, err)
	}
	if all == nil {
		all = make(map[string]*TokenRecord)
	}
	return all, nil
}

func (s *Store) saveFile(all map[string]*TokenRecord) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write with randomized temp file name
	dir := filepath.Dir(s.path)
	tmpFile, err := os.CreateTemp(dir, "tokens-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	// Unix: rename atomically replaces the destination.
	// Windows: rename fails when destination exists. Try rename first to
	// preserve the old file on unrelated errors; only remove+retry on failure.
	if err := os.Rename(tmpPath, s.path); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(s.path)
			return os.Rename(tmpPath, s.path)
		}
		os.Remove(tmpPath)
		return err
	}
	return nil
}
