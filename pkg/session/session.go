// Package session turns the persisted cookie strings into a cookie jar for a
// single outbound call and saves session cookies found in responses.
//
// Nothing here is cached: every jar is rebuilt from the store, so the file on
// disk stays the only source of truth for the session.
package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/angelware-net/spectre/pkg/cookiestore"
	"github.com/angelware-net/spectre/pkg/logger"
	"golang.org/x/net/publicsuffix"
)

// Kind selects which session cookie an operation deals with.
type Kind int

const (
	// Primary is the auth cookie proving username/password login.
	Primary Kind = iota
	// OTP is the twoFactorAuth cookie proving a second factor.
	OTP
)

// CookieName returns the upstream cookie name for the kind.
func (k Kind) CookieName() string {
	if k == OTP {
		return "twoFactorAuth"
	}
	return "auth"
}

// StoreKey returns the cookie store key the kind is persisted under.
func (k Kind) StoreKey() string {
	if k == OTP {
		return cookiestore.KeyOTPCookies
	}
	return cookiestore.KeyCookies
}

func (k Kind) String() string {
	if k == OTP {
		return "otp"
	}
	return "primary"
}

// Store is the persistence the manager needs. *cookiestore.Store satisfies it.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// StoredSession is the persisted state: both cookie strings are optional.
type StoredSession struct {
	AuthCookie string
	HasAuth    bool
	OTPCookie  string
	HasOTP     bool
}

// Manager builds per-call jars and persists response cookies.
type Manager struct {
	store Store
	log   logger.Logger
}

func NewManager(store Store, l logger.Logger) *Manager {
	return &Manager{store: store, log: logger.OrNop(l)}
}

// Snapshot reads both cookie strings from the store.
func (m *Manager) Snapshot() (*StoredSession, error) {
	ss := &StoredSession{}
	var err error
	ss.AuthCookie, ss.HasAuth, err = m.store.Get(Primary.StoreKey())
	if err != nil {
		return nil, err
	}
	ss.OTPCookie, ss.HasOTP, err = m.store.Get(OTP.StoreKey())
	if err != nil {
		return nil, err
	}
	return ss, nil
}

// BuildJar returns a fresh jar holding the stored cookies scoped to target.
// The primary string is added as one cookie; the OTP string is split on ';'
// and every fragment is added on its own. Unparseable fragments are skipped,
// so with nothing usable stored the request simply goes out without cookies.
// An unreadable store is logged and treated the same way.
func (m *Manager) BuildJar(target string) (http.CookieJar, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse target url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	ss, err := m.Snapshot()
	if err != nil {
		m.log.Warning("cannot read stored cookies, sending none: %v", err)
		return jar, nil
	}
	if ss.HasAuth {
		m.addCookie(jar, u, ss.AuthCookie)
	}
	if ss.HasOTP {
		for _, frag := range strings.Split(ss.OTPCookie, ";") {
			frag = strings.TrimSpace(frag)
			if frag == "" || IsCookieAttribute(frag) {
				continue
			}
			m.addCookie(jar, u, frag)
		}
	}
	return jar, nil
}

func (m *Manager) addCookie(jar http.CookieJar, u *url.URL, raw string) {
	c, err := http.ParseSetCookie(strings.TrimSpace(raw))
	if err != nil {
		m.log.Warning("skipping unparseable stored cookie: %v", err)
		return
	}
	jar.SetCookies(u, []*http.Cookie{c})
}

// ExtractAndPersist saves every Set-Cookie line of the response header h
// carrying the kind's cookie, joined with "; ", verbatim. Nothing is written
// when no line matches. The extracted string is returned even when saving it
// fails so the caller can retry the save alone.
func (m *Manager) ExtractAndPersist(h http.Header, kind Kind) (string, error) {
	value := FilterSetCookies(h, kind.CookieName())
	if value == "" {
		return "", nil
	}
	if err := m.store.Set(kind.StoreKey(), value); err != nil {
		return value, err
	}
	m.log.Info("persisted %s cookie", kind)
	return value, nil
}

// AuthToken returns the bare value of the stored auth cookie.
func (m *Manager) AuthToken() (string, bool, error) {
	raw, ok, err := m.store.Get(Primary.StoreKey())
	if err != nil || !ok {
		return "", false, err
	}
	c, err := http.ParseSetCookie(strings.TrimSpace(raw))
	if err != nil || c.Name != Primary.CookieName() || c.Value == "" {
		return "", false, nil
	}
	return c.Value, true, nil
}

// FilterSetCookies returns the Set-Cookie lines in h whose cookie is named
// name, joined with "; ". Attributes are kept as received.
func FilterSetCookies(h http.Header, name string) string {
	var matched []string
	for _, line := range h.Values("Set-Cookie") {
		if CookieName(line) == name {
			matched = append(matched, line)
		}
	}
	return strings.Join(matched, "; ")
}

// CookieName returns the name of the leading name=value pair of a Set-Cookie
// line, or "" when the line has none.
func CookieName(line string) string {
	pair, _, _ := strings.Cut(line, ";")
	name, _, ok := strings.Cut(pair, "=")
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}

var cookieAttributes = map[string]bool{
	"path":        true,
	"domain":      true,
	"expires":     true,
	"max-age":     true,
	"secure":      true,
	"httponly":    true,
	"samesite":    true,
	"partitioned": true,
}

// IsCookieAttribute reports whether a ';' fragment is an attribute of the
// preceding cookie rather than a cookie of its own.
func IsCookieAttribute(frag string) bool {
	name, _, _ := strings.Cut(frag, "=")
	return cookieAttributes[strings.ToLower(strings.TrimSpace(name))]
}
