package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a FileStore.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFormat forces the file format instead of deriving it from the extension.
func WithFormat(format Format) FileStoreOption {
	return func(s *FileStore) {
		s.format = format
	}
}

// WithFileMode sets the permissions used when the file is written.
func WithFileMode(mode fs.FileMode) FileStoreOption {
	return func(s *FileStore) {
		s.mode = mode
	}
}

// FileStore keeps settings in a TOML or YAML file. Every save rewrites the
// whole file through a temporary sibling and a rename, so readers never see a
// partially written file.
type FileStore struct {
	path   string
	format Format
	mode   fs.FileMode

	mu     sync.RWMutex
	values map[string]string
}

// NewFileStore opens path, loading existing values. A missing file is treated
// as empty and is created on the first save.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state: file path is required")
	}
	s := &FileStore{path: path, mode: 0o644}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.format == "" {
		s.format = formatFromPath(path)
	}
	if s.format != FormatTOML && s.format != FormatYAML {
		return nil, fmt.Errorf("state: unsupported file format %q", s.format)
	}
	values, err := s.read()
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Format returns the encoding in use.
func (s *FileStore) Format() Format { return s.format }

func (s *FileStore) Load(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *FileStore) Save(ctx context.Context, key, value string) error {
	return s.SaveAll(ctx, Entry{Key: key, Value: value})
}

// SaveAll applies entries and rewrites the file once. On failure the
// in-memory values are left unchanged.
func (s *FileStore) SaveAll(ctx context.Context, entries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, e := range entries {
		if e.Key == "" {
			return ErrKeyRequired
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]string, len(s.values)+len(entries))
	for k, v := range s.values {
		next[k] = v
	}
	for _, e := range entries {
		next[e.Key] = e.Value
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.values), nil
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", s.path, err)
	}
	values := map[string]string{}
	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &values)
	default:
		_, err = toml.Decode(string(data), &values)
	}
	if err != nil {
		return nil, fmt.Errorf("state: decode %s %s: %w", s.format, s.path, err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	var buf bytes.Buffer
	var err error
	switch s.format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		err = enc.Encode(values)
		if closeErr := enc.Close(); err == nil {
			err = closeErr
		}
	default:
		err = toml.NewEncoder(&buf).Encode(values)
	}
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", s.format, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("state: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("state: write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(s.mode); err != nil {
		tmp.Close()
		return fmt.Errorf("state: chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("state: replace %s: %w", s.path, err)
	}
	return nil
}

func formatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}
