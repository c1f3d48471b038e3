// Package auth drives the login, second-factor and logout flow. It keeps no
// session in memory: every transition reads the cookie store, talks to the
// API, and writes back whatever cookies the API handed out.
package auth

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/angelware-net/spectre/pkg/cookiestore"
	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/angelware-net/spectre/pkg/session"
	"github.com/angelware-net/spectre/pkg/vrchat"
)

const (
	loginPath          = "auth/user"
	totpVerifyPath     = "auth/twofactorauth/totp/verify"
	emailOTPVerifyPath = "auth/twofactorauth/emailotp/verify"
	logoutPath         = "logout"
)

// State is the session state derived from the stored cookies.
type State int

const (
	LoggedOut State = iota
	PendingTwoFactor
	Authenticated
)

func (s State) String() string {
	switch s {
	case PendingTwoFactor:
		return "pending_two_factor"
	case Authenticated:
		return "authenticated"
	default:
		return "logged_out"
	}
}

type codeBody struct {
	Code string `json:"code"`
}

// Controller is safe for concurrent use, though concurrent flows race on
// the store with last-write-wins.
type Controller struct {
	client *vrchat.Client
	store  *cookiestore.Store
	log    logger.Logger
}

// NewController wires the controller. client must have been built over a
// session manager reading the same store.
func NewController(client *vrchat.Client, store *cookiestore.Store, l logger.Logger) *Controller {
	return &Controller{client: client, store: store, log: logger.OrNop(l)}
}

// Login sends the credentials as Basic auth together with any cookies
// already stored, so a half-finished second-factor flow can resume. The raw
// body is returned; it tells the caller whether a second factor is needed.
func (c *Controller) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" {
		return "", ErrEmptyUsername
	}
	cred := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	resp, err := c.client.Do(ctx, &vrchat.Request{
		URL:     c.client.APIURL(loginPath),
		Method:  http.MethodGet,
		Headers: vrchat.Headers{{Key: vrchat.AUTHORIZATION_KEY, Value: "Basic " + cred}},
	}, true)
	if err != nil {
		return "", err
	}
	return c.persist(resp)
}

// VerifyTotp submits an authenticator app code.
func (c *Controller) VerifyTotp(ctx context.Context, code string) (string, error) {
	return c.verify(ctx, totpVerifyPath, code)
}

// VerifyEmailOtp submits a code received by email.
func (c *Controller) VerifyEmailOtp(ctx context.Context, code string) (string, error) {
	return c.verify(ctx, emailOTPVerifyPath, code)
}

func (c *Controller) verify(ctx context.Context, path, code string) (string, error) {
	resp, err := c.client.Do(ctx, &vrchat.Request{
		URL:    c.client.APIURL(path),
		Method: http.MethodPost,
		Body:   codeBody{Code: code},
	}, true)
	if err != nil {
		return "", err
	}
	return c.persist(resp)
}

// Logout invalidates the session upstream and then forgets the primary
// cookie. The second-factor cookie stays stored. Nothing is cleared when the
// call fails.
func (c *Controller) Logout(ctx context.Context) (string, error) {
	resp, err := c.client.Do(ctx, &vrchat.Request{
		URL:    c.client.APIURL(logoutPath),
		Method: http.MethodPut,
	}, true)
	if err != nil {
		return "", err
	}
	if err := c.store.ClearLoginCookies(); err != nil {
		return resp.Body, &PersistError{Key: cookiestore.KeyCookies, Body: resp.Body, Err: err}
	}
	c.log.Info("logged out, %s cleared", cookiestore.KeyCookies)
	return resp.Body, nil
}

// Status reads the stored cookies without touching the network.
func (c *Controller) Status() (State, *session.StoredSession, error) {
	ss, err := c.client.Sessions().Snapshot()
	if err != nil {
		return LoggedOut, nil, err
	}
	switch {
	case !ss.HasAuth:
		return LoggedOut, ss, nil
	case !ss.HasOTP:
		return PendingTwoFactor, ss, nil
	default:
		return Authenticated, ss, nil
	}
}

// persist saves any auth and twoFactorAuth cookies carried by resp. Each
// kind is independent: a missing cookie leaves the stored one untouched and
// a failed save does not stop the other kind. The first failure is returned.
func (c *Controller) persist(resp *vrchat.Response) (string, error) {
	sessions := c.client.Sessions()
	var first *PersistError
	for _, kind := range []session.Kind{session.Primary, session.OTP} {
		value, err := sessions.ExtractAndPersist(resp.Header, kind)
		if err == nil {
			continue
		}
		c.log.Error("saving %s failed: %v", kind.StoreKey(), err)
		if first == nil {
			first = &PersistError{
				Key:    kind.StoreKey(),
				Cookie: value,
				Body:   resp.Body,
				Err:    err,
			}
		}
	}
	if first != nil {
		return resp.Body, first
	}
	return resp.Body, nil
}
