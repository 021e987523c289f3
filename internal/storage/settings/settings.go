package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// SelectedGamesKey holds the Twitch games picked for automatic claiming.
const SelectedGamesKey = "twitchSelectedGames"

// keyDelimiter keeps dotted keys such as "window.size" flat.
const keyDelimiter = "::"

// Store is the JSON settings document. Every save re-reads the file and
// merges one key into it. Keys are matched case-insensitively and written
// with the caller's spelling.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (*viper.Viper, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read settings failed: %w", err)
	}
	return v, nil
}

func (s *Store) Save(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document()
	if err != nil {
		return err
	}
	for existing := range doc {
		if strings.EqualFold(existing, key) {
			delete(doc, existing)
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s failed: %w", key, err)
	}
	doc[key] = raw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory failed: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("write settings failed: %w", err)
	}
	return nil
}

// document is the settings file as raw top-level entries. Viper's writer
// folds key case, so saves bypass it.
func (s *Store) document() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings failed: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("read settings failed: %w", err)
	}
	return doc, nil
}

// Load returns the stored value of key and whether it was set.
func (s *Store) Load(key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.read()
	if err != nil {
		return nil, false, err
	}
	if !v.IsSet(key) {
		return nil, false, nil
	}
	return v.Get(key), true, nil
}

func (s *Store) LoadStrings(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.read()
	if err != nil {
		return nil, err
	}
	return v.GetStringSlice(key), nil
}
