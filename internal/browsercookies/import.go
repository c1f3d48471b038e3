package browsercookies

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/angelware-net/spectre/pkg/logger"
)

// VRChatDomain is the site whose cookies hold the VRChat web session.
const VRChatDomain = "vrchat.com"

const (
	authCookie = "auth"
	otpCookie  = "twoFactorAuth"
)

var (
	ErrNoBrowserStore = errors.New("no supported browser cookie store found")
	ErrNoSession      = errors.New("no VRChat auth cookie found")
)

// Reader reads cookie stores. The zero value is not usable; call New.
type Reader struct {
	log      logger.Logger
	now      func() time.Time
	browsers func() []browser
}

func New(l logger.Logger) *Reader {
	return &Reader{log: logger.OrNop(l), now: time.Now, browsers: systemBrowsers}
}

// Read returns the live cookies for domain stored at path.
func (r *Reader) Read(ctx context.Context, path, domain string) ([]Cookie, *Source, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, nil, err
	}
	src := &Source{Path: path, Format: format}
	var cookies []Cookie
	switch format {
	case FormatFirefox:
		src.Browser = firefoxLayout.browser
		cookies, err = r.readCopy(ctx, path, domain, firefoxLayout)
	case FormatChromium:
		src.Browser = chromiumLayout.browser
		cookies, err = r.readCopy(ctx, path, domain, chromiumLayout)
	case FormatNetscape:
		src.Browser = "cookies.txt"
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("error: cannot open cookie file: %w", err)
		}
		defer f.Close()
		cookies, err = readNetscape(f, domain, r.now(), r.log)
	}
	if err != nil {
		return nil, nil, err
	}
	r.log.Info("read %d cookies for %s from %s store", len(cookies), domain, format)
	return cookies, src, nil
}

func (r *Reader) readCopy(ctx context.Context, path, domain string, l layout) ([]Cookie, error) {
	copyPath, cleanup, err := snapshot(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return readSQLite(ctx, copyPath, domain, l, r.now())
}

// Find scans the known browsers in priority order and returns the cookies
// of the first store holding a VRChat session for domain. Stores that fail
// to read are skipped.
func (r *Reader) Find(ctx context.Context, domain string) ([]Cookie, *Source, error) {
	var (
		tried []string
		read  int
	)
	for _, b := range r.browsers() {
		tried = append(tried, b.name)
		for _, path := range b.candidates() {
			cookies, src, err := r.Read(ctx, path, domain)
			if err != nil {
				r.log.Warning("skipping %s cookie store: %v", b.name, err)
				continue
			}
			read++
			if _, _, ok := Session(cookies); !ok {
				continue
			}
			src.Browser = b.name
			return cookies, src, nil
		}
	}
	if read > 0 {
		return nil, nil, ErrNoSession
	}
	return nil, nil, fmt.Errorf("%w (tried %s)", ErrNoBrowserStore, strings.Join(tried, ", "))
}

// SessionStore receives an imported session. *cookiestore.Store satisfies it.
type SessionStore interface {
	SaveLoginCookies(value string) error
	SaveOTPCookies(value string) error
}

// ImportSession reads the VRChat session from the store at path, or from
// the first browser holding one when path is empty, and saves it. The
// second-factor cookie is only overwritten when the browser has one.
func (r *Reader) ImportSession(ctx context.Context, path string, store SessionStore) (src *Source, hasOTP bool, err error) {
	var cookies []Cookie
	if path == "" {
		cookies, src, err = r.Find(ctx, VRChatDomain)
	} else {
		cookies, src, err = r.Read(ctx, path, VRChatDomain)
	}
	if err != nil {
		return nil, false, err
	}
	auth, otp, ok := Session(cookies)
	if !ok {
		return src, false, ErrNoSession
	}
	if err := store.SaveLoginCookies(auth); err != nil {
		return src, false, err
	}
	if otp != "" {
		if err := store.SaveOTPCookies(otp); err != nil {
			return src, false, err
		}
	}
	r.log.Info("imported VRChat session from %s", src.Browser)
	return src, otp != "", nil
}

// Session picks the auth and twoFactorAuth cookies out of cookies and
// renders them in stored form. ok is false without an auth cookie; otp is
// empty when the browser holds no second-factor cookie.
func Session(cookies []Cookie) (auth, otp string, ok bool) {
	for _, c := range cookies {
		switch {
		case c.Name == authCookie && auth == "":
			auth = c.SetCookie()
		case c.Name == otpCookie && otp == "":
			otp = c.SetCookie()
		}
	}
	return auth, otp, auth != ""
}
