package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/securepipe/securepipe/internal/common/apperrors"
)

const (
	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "SECUREPIPE_CONFIG"
	// EnvAPIURL overrides DefaultAPIURL for first-time logins.
	EnvAPIURL = "SECUREPIPE_API_URL"

	configDirName  = ".securepipe"
	configFileName = "config.json"
)

// ErrConfigCorrupt is returned when the configuration file exists but cannot be
// parsed.
var ErrConfigCorrupt = apperrors.New("configuration file is corrupt").SetExitCode(apperrors.ExitConfigCorrupt)

// Store loads and persists the session configuration.
type Store interface {
	// Load returns nil and no error when no configuration exists.
	Load() (*Session, error)
	Save(s *Session) error
	// Reset removes the configuration. Removing an absent configuration is not
	// an error.
	Reset() error
	Path() string
}

// DefaultPath returns $SECUREPIPE_CONFIG or ~/.securepipe/config.json.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// DefaultAPIURLFromEnv returns $SECUREPIPE_API_URL or DefaultAPIURL.
func DefaultAPIURLFromEnv() string {
	if u := strings.TrimSpace(os.Getenv(EnvAPIURL)); u != "" {
		return u
	}
	return DefaultAPIURL
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. Variables already set take precedence; a missing file is ignored.
func LoadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(cwd, ".env"))
}

// FileStore keeps the session in a JSON file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", f.path).Msg("no configuration file")
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	s, err := decodeSession(data)
	if err != nil {
		return nil, ErrConfigCorrupt.MsgErr(fmt.Sprintf("Configuration file %s is not valid JSON", f.path), err)
	}
	log.Debug().Str("path", f.path).Bool("has_token", s.HasToken()).Msg("loaded configuration")
	return s, nil
}

// Save writes the session to a temporary file next to the target and renames
// it into place.
func (f *FileStore) Save(s *Session) error {
	if f.path == "" {
		return errors.New("file path cannot be empty")
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	data, err := encodeSession(s)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+configFileName+".*")
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write config file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	log.Debug().Str("path", f.path).Msg("saved configuration")
	return nil
}

func (f *FileStore) Reset() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to remove config file: %w", err)
	}
	return nil
}

// MemStore keeps the encoded session in memory. It encodes and decodes exactly
// like FileStore.
type MemStore struct {
	mu   sync.Mutex
	data []byte
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns a store preloaded with s; a nil s means no configuration.
func NewMemStore(s *Session) *MemStore {
	m := &MemStore{}
	if s != nil {
		if err := m.Save(s); err != nil {
			panic(err)
		}
	}
	return m
}

// NewMemStoreFromBytes returns a store holding raw document bytes.
func NewMemStoreFromBytes(data []byte) *MemStore {
	return &MemStore{data: append([]byte(nil), data...)}
}

func (m *MemStore) Path() string {
	return "memory"
}

func (m *MemStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	s, err := decodeSession(m.data)
	if err != nil {
		return nil, ErrConfigCorrupt.MsgErr("Configuration is not valid JSON", err)
	}
	return s, nil
}

func (m *MemStore) Save(s *Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MemStore) Reset() error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// Exists reports whether a configuration is stored.
func (m *MemStore) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data != nil
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func encodeSession(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("no configuration to save")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
