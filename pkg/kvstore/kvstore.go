// Package kvstore implements a small JSON-document key/value file: the whole
// file is one JSON object and every top-level member is an entry. The file is
// opened, read or rewritten and closed again on every call, so no handle is
// ever held across operations and nothing has to be torn down at exit.
package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const fileMode = 0600

// BadSuffix is appended to the name of a corrupt file set aside by a write.
const BadSuffix = ".bad"

var (
	ErrEmptyKey     = errors.New("key cannot be empty")
	ErrCorruptStore = errors.New("store file is not a JSON object")
)

// StoreError reports a failure of the persistent layer for one key.
type StoreError struct {
	Op   string
	Key  string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("store %s %q in %s: %v", e.Op, e.Key, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is a file-backed JSON key/value store.
//
// The mutex only keeps single writes from interleaving inside this process;
// read-modify-write sequences spanning several calls are not isolated.
type Store struct {
	fs   afero.Fs
	path string
	log  logger.Logger
	mu   sync.Mutex
}

// Open returns a store for dir/name on fs, creating dir when needed. The
// file itself is created lazily by the first write.
func Open(fs afero.Fs, dir, name string) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, &StoreError{Op: "open", Path: dir, Err: err}
	}
	return &Store{fs: fs, path: filepath.Join(dir, name), log: logger.NewNopLogger()}, nil
}

// SetLogger sets the logger used to report a corrupt file being set aside.
func (s *Store) SetLogger(l logger.Logger) {
	s.log = logger.OrNop(l)
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("{}"), nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, ErrCorruptStore
	}
	return data, nil
}

// readForWrite is read for Set and Delete. A corrupt file is renamed to
// path+BadSuffix and the write starts from an empty document; reset
// reports that the caller must write even when nothing else changed.
func (s *Store) readForWrite() (data []byte, reset bool, err error) {
	data, err = s.read()
	if !errors.Is(err, ErrCorruptStore) {
		return data, false, err
	}
	bad := s.path + BadSuffix
	if err := s.fs.Rename(s.path, bad); err != nil {
		s.log.Warning("%s is corrupt and could not be set aside: %v, overwriting it", s.path, err)
	} else {
		s.log.Warning("%s is corrupt, moved to %s and starting empty", s.path, bad)
	}
	return []byte("{}"), true, nil
}

// Get returns the entry stored under key. The boolean is false when the key
// is absent; an error is only returned when the file cannot be read or is
// not a JSON object.
func (s *Store) Get(key string) (gjson.Result, bool, error) {
	if key == "" {
		return gjson.Result{}, false, &StoreError{Op: "get", Path: s.path, Err: ErrEmptyKey}
	}
	s.mu.Lock()
	data, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return gjson.Result{}, false, &StoreError{Op: "get", Key: key, Path: s.path, Err: err}
	}
	res := gjson.GetBytes(data, escapeKey(key))
	if !res.Exists() {
		return gjson.Result{}, false, nil
	}
	return res, true, nil
}

// GetString returns the string entry under key, treating non-string values
// as absent.
func (s *Store) GetString(key string) (string, bool, error) {
	res, ok, err := s.Get(key)
	if err != nil || !ok {
		return "", false, err
	}
	if res.Type != gjson.String {
		return "", false, nil
	}
	return res.String(), true, nil
}

// Set upserts key with value, which is encoded as JSON. A corrupt file is set
// aside and the value is written to a fresh document.
func (s *Store) Set(key string, value interface{}) error {
	if key == "" {
		return &StoreError{Op: "set", Path: s.path, Err: ErrEmptyKey}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, _, err := s.readForWrite()
	if err != nil {
		return &StoreError{Op: "set", Key: key, Path: s.path, Err: err}
	}
	data, err = sjson.SetBytes(data, escapeKey(key), value)
	if err != nil {
		return &StoreError{Op: "set", Key: key, Path: s.path, Err: err}
	}
	if err = s.write(data); err != nil {
		return &StoreError{Op: "set", Key: key, Path: s.path, Err: err}
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error. A corrupt file
// is set aside and replaced by an empty document.
func (s *Store) Delete(key string) error {
	if key == "" {
		return &StoreError{Op: "delete", Path: s.path, Err: ErrEmptyKey}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, reset, err := s.readForWrite()
	if err != nil {
		return &StoreError{Op: "delete", Key: key, Path: s.path, Err: err}
	}
	path := escapeKey(key)
	if !gjson.GetBytes(data, path).Exists() {
		if reset {
			if err = s.write(data); err != nil {
				return &StoreError{Op: "delete", Key: key, Path: s.path, Err: err}
			}
		}
		return nil
	}
	data, err = sjson.DeleteBytes(data, path)
	if err != nil {
		return &StoreError{Op: "delete", Key: key, Path: s.path, Err: err}
	}
	if err = s.write(data); err != nil {
		return &StoreError{Op: "delete", Key: key, Path: s.path, Err: err}
	}
	return nil
}

// Keys lists the top-level keys in file order.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	data, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, &StoreError{Op: "keys", Path: s.path, Err: err}
	}
	var keys []string
	gjson.ParseBytes(data).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys, nil
}

// write replaces the file through a temp file and rename so a crash never
// leaves a half-written document behind.
func (s *Store) write(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpPath)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Chmod(tmpPath, fileMode); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// escapeKey turns a literal key into a single gjson/sjson path component.
func escapeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		if !isPlainKeyRune(r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isPlainKeyRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
