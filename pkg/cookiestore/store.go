// Package cookiestore persists the two raw session cookie strings in the
// .cookies.dat document.
//
// On disk the primary cookie is wrapped as {"value": ...} and the second
// factor cookie as {"otp": ...}. Other tools read the same file, so the
// wrapping field names must not change.
package cookiestore

import (
	"errors"
	"fmt"

	"github.com/angelware-net/spectre/common"
	"github.com/angelware-net/spectre/pkg/kvstore"
	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// Keys understood by the store.
const (
	KeyCookies    = "cookies"
	KeyOTPCookies = "otp_cookies"
)

var ErrUnknownKey = errors.New("unknown cookie key")

// wrapField maps a key to the field its value is wrapped in.
var wrapField = map[string]string{
	KeyCookies:    "value",
	KeyOTPCookies: "otp",
}

// Store reads and writes the session cookie strings.
type Store struct {
	kv  *kvstore.Store
	log logger.Logger
}

// New wraps an existing key/value store and points its logger at l.
func New(kv *kvstore.Store, l logger.Logger) *Store {
	kv.SetLogger(l)
	return &Store{kv: kv, log: logger.OrNop(l)}
}

// Open opens dir/.cookies.dat on fs.
func Open(fs afero.Fs, dir string, l logger.Logger) (*Store, error) {
	kv, err := kvstore.Open(fs, dir, common.CookieFile)
	if err != nil {
		return nil, err
	}
	return New(kv, l), nil
}

// Path returns the location of .cookies.dat.
func (s *Store) Path() string {
	return s.kv.Path()
}

// Get returns the raw cookie string stored under key. A missing entry, or
// one whose wrapper lacks the expected string field, reads as absent.
func (s *Store) Get(key string) (string, bool, error) {
	field, ok := wrapField[key]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	res, ok, err := s.kv.Get(key)
	if err != nil || !ok {
		return "", false, err
	}
	val := res.Get(field)
	if !val.Exists() || val.Type != gjson.String {
		s.log.Warning("entry %q has no %q string field, treating as absent", key, field)
		return "", false, nil
	}
	return val.String(), true, nil
}

// Set upserts the raw cookie string under key.
func (s *Store) Set(key, value string) error {
	field, ok := wrapField[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := s.kv.Set(key, map[string]string{field: value}); err != nil {
		return err
	}
	s.log.Info("saved %s", key)
	return nil
}

// Delete removes key. Deleting an absent entry is not an error.
func (s *Store) Delete(key string) error {
	if _, ok := wrapField[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := s.kv.Delete(key); err != nil {
		return err
	}
	s.log.Info("cleared %s", key)
	return nil
}

// Clear removes both cookie entries.
func (s *Store) Clear() error {
	if err := s.Delete(KeyCookies); err != nil {
		return err
	}
	return s.Delete(KeyOTPCookies)
}

func (s *Store) LoadLoginCookies() (string, bool, error) {
	return s.Get(KeyCookies)
}

func (s *Store) SaveLoginCookies(value string) error {
	return s.Set(KeyCookies, value)
}

func (s *Store) ClearLoginCookies() error {
	return s.Delete(KeyCookies)
}

func (s *Store) LoadOTPCookies() (string, bool, error) {
	return s.Get(KeyOTPCookies)
}

func (s *Store) SaveOTPCookies(value string) error {
	return s.Set(KeyOTPCookies, value)
}

func (s *Store) ClearOTPCookies() error {
	return s.Delete(KeyOTPCookies)
}
