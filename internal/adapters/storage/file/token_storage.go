package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pet-guardian/internal/domain/session"
)

const (
	DefaultDirName = ".petguardian"
	storageFile    = "storage.json"
)

// DefaultDir es ~/.petguardian (o PETCTL_HOME si se definió).
func DefaultDir(override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

// TokenStorage es el storage durable del CLI: un JSON {key: value} en dir.
// Solo se usa la clave "token".
type TokenStorage struct {
	dir string
	mu  sync.Mutex
}

func NewTokenStorage(dir string) *TokenStorage {
	return &TokenStorage{dir: dir}
}

var _ session.TokenStorage = (*TokenStorage)(nil)

func (s *TokenStorage) path() string {
	return filepath.Join(s.dir, storageFile)
}

func (s *TokenStorage) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[session.TokenKey], nil
}

func (s *TokenStorage) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[session.TokenKey] = token
	return s.write(values)
}

func (s *TokenStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[session.TokenKey]; !ok {
		return nil
	}
	delete(values, session.TokenKey)
	return s.write(values)
}

// read: archivo inexistente => mapa vacío.
func (s *TokenStorage) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file storage: read: %w", err)
	}

	values := map[string]string{}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("file storage: decode: %w", err)
	}
	return values, nil
}

// write reemplaza el archivo de forma atómica (tmp + rename).
func (s *TokenStorage) write(values map[string]string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("file storage: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, storageFile+".*")
	if err != nil {
		return fmt.Errorf("file storage: temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file storage: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return fmt.Errorf("file storage: rename: %w", err)
	}
	return nil
}
