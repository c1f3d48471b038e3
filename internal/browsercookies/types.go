// Package browsercookies reads the VRChat session cookies a web browser
// already holds, so a session started on vrchat.com can be reused without
// logging in again. Firefox and Chromium SQLite stores (unencrypted values
// only) and Netscape cookies.txt files are supported. Cookie values never
// reach the logs.
package browsercookies

import (
	"net/http"
	"time"
)

// Format is the on-disk layout of a cookie store.
type Format int

const (
	FormatUnknown Format = iota
	// FormatFirefox is the moz_cookies SQLite schema.
	FormatFirefox
	// FormatChromium is the Chromium cookies SQLite schema.
	FormatChromium
	// FormatNetscape is the tab separated cookies.txt layout.
	FormatNetscape
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "firefox"
	case FormatChromium:
		return "chromium"
	case FormatNetscape:
		return "netscape"
	default:
		return "unknown"
	}
}

// Cookie is one browser cookie. Value is secret.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
}

// SetCookie renders c as a Set-Cookie line without a Domain attribute, the
// form the session store keeps. The jar then scopes it to whatever API host
// a request targets.
func (c Cookie) SetCookie() string {
	hc := &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
	if hc.Path == "" {
		hc.Path = "/"
	}
	if !c.Expires.IsZero() && c.Expires.Unix() > 0 {
		hc.Expires = c.Expires
	}
	return hc.String()
}

// Source tells where cookies were read from.
type Source struct {
	Path    string
	Format  Format
	Browser string
}
