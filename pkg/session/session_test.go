package session

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/angelware-net/spectre/pkg/cookiestore"
	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/spf13/afero"
)

const testTarget = "https://api.vrchat.cloud/api/1/auth/user"

func newTestManager(t *testing.T) (*Manager, *cookiestore.Store) {
	t.Helper()
	cs, err := cookiestore.Open(afero.NewMemMapFs(), "/app", nil)
	if err != nil {
		t.Fatalf("cookiestore.Open: %v", err)
	}
	return NewManager(cs, nil), cs
}

func jarCookies(t *testing.T, jar http.CookieJar, target string) map[string]string {
	t.Helper()
	u, err := url.Parse(target)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]string)
	for _, c := range jar.Cookies(u) {
		out[c.Name] = c.Value
	}
	return out
}

func TestBuildJar_Empty(t *testing.T) {
	m, _ := newTestManager(t)

	jar, err := m.BuildJar(testTarget)
	if err != nil {
		t.Fatalf("BuildJar: %v", err)
	}
	if got := jarCookies(t, jar, testTarget); len(got) != 0 {
		t.Fatalf("expected empty jar, got %v", got)
	}
}

func TestBuildJar_BothCookies(t *testing.T) {
	m, cs := newTestManager(t)
	_ = cs.SaveLoginCookies("  auth=authcookie_abc; Path=/; HttpOnly  ")
	_ = cs.SaveOTPCookies("twoFactorAuth=tfa_1; Path=/; HttpOnly; extra=2")

	jar, err := m.BuildJar(testTarget)
	if err != nil {
		t.Fatalf("BuildJar: %v", err)
	}
	got := jarCookies(t, jar, testTarget)
	want := map[string]string{
		"auth":          "authcookie_abc",
		"twoFactorAuth": "tfa_1",
		"extra":         "2",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("cookie %s: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestBuildJar_SkipsMalformed(t *testing.T) {
	m, cs := newTestManager(t)
	mock := logger.NewMockLogger()
	m.log = mock
	_ = cs.SaveLoginCookies("not a cookie")
	_ = cs.SaveOTPCookies(";;  ; twoFactorAuth=ok ; garbage")

	jar, err := m.BuildJar(testTarget)
	if err != nil {
		t.Fatalf("BuildJar must not fail on malformed values: %v", err)
	}
	got := jarCookies(t, jar, testTarget)
	if len(got) != 1 || got["twoFactorAuth"] != "ok" {
		t.Fatalf("expected only twoFactorAuth, got %v", got)
	}
	if len(mock.WarningCalls) != 2 {
		t.Fatalf("expected 2 warnings, got %v", mock.WarningCalls)
	}
	for _, w := range mock.WarningCalls {
		if strings.Contains(w, "not a cookie") || strings.Contains(w, "garbage") {
			t.Errorf("cookie text leaked into log: %q", w)
		}
	}
}

func TestBuildJar_ScopedToTarget(t *testing.T) {
	m, cs := newTestManager(t)
	_ = cs.SaveLoginCookies("auth=a")

	jar, err := m.BuildJar(testTarget)
	if err != nil {
		t.Fatal(err)
	}
	if got := jarCookies(t, jar, "https://example.com/"); len(got) != 0 {
		t.Fatalf("cookies leaked to another host: %v", got)
	}
}

type failingStore struct{ err error }

func (f failingStore) Get(string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Set(string, string) error         { return f.err }

func TestBuildJar_StoreFailureSendsNoCookies(t *testing.T) {
	mock := logger.NewMockLogger()
	m := NewManager(failingStore{err: errors.New("disk gone")}, mock)

	jar, err := m.BuildJar(testTarget)
	if err != nil {
		t.Fatalf("BuildJar: %v", err)
	}
	if got := jarCookies(t, jar, testTarget); len(got) != 0 {
		t.Fatalf("expected empty jar, got %v", got)
	}
	if len(mock.WarningCalls) != 1 || !strings.Contains(mock.WarningCalls[0], "disk gone") {
		t.Fatalf("expected one warning naming the cause, got %v", mock.WarningCalls)
	}
}

func TestBuildJar_CorruptCookieFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	cs, err := cookiestore.Open(fs, "/app", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, cs.Path(), []byte(`{"cookies": {"value": "auth=x"`), 0600); err != nil {
		t.Fatal(err)
	}
	m := NewManager(cs, nil)

	jar, err := m.BuildJar(testTarget)
	if err != nil {
		t.Fatalf("BuildJar: %v", err)
	}
	if got := jarCookies(t, jar, testTarget); len(got) != 0 {
		t.Fatalf("expected empty jar, got %v", got)
	}
}

func responseWithCookies(lines ...string) http.Header {
	h := http.Header{}
	for _, l := range lines {
		h.Add("Set-Cookie", l)
	}
	return h
}

func TestExtractAndPersist_Primary(t *testing.T) {
	m, cs := newTestManager(t)
	resp := responseWithCookies(
		"auth=abc123; Path=/",
		"twoFactorAuth=xyz789; Path=/",
		"apiKey=zzz",
	)

	got, err := m.ExtractAndPersist(resp, Primary)
	if err != nil {
		t.Fatalf("ExtractAndPersist: %v", err)
	}
	if got != "auth=abc123; Path=/" {
		t.Fatalf("unexpected extracted value %q", got)
	}
	stored, ok, _ := cs.LoadLoginCookies()
	if !ok || stored != "auth=abc123; Path=/" {
		t.Fatalf("unexpected stored value %q ok=%v", stored, ok)
	}
	if _, ok, _ := cs.LoadOTPCookies(); ok {
		t.Fatal("primary extraction must not write the otp entry")
	}
}

func TestExtractAndPersist_OTPJoinsMatches(t *testing.T) {
	m, cs := newTestManager(t)
	resp := responseWithCookies(
		"twoFactorAuth=one; Path=/",
		"auth=abc",
		"twoFactorAuth=two; HttpOnly",
	)

	if _, err := m.ExtractAndPersist(resp, OTP); err != nil {
		t.Fatal(err)
	}
	stored, _, _ := cs.LoadOTPCookies()
	if stored != "twoFactorAuth=one; Path=/; twoFactorAuth=two; HttpOnly" {
		t.Fatalf("unexpected stored otp %q", stored)
	}
}

func TestExtractAndPersist_NoMatchKeepsStore(t *testing.T) {
	m, cs := newTestManager(t)
	_ = cs.SaveLoginCookies("auth=old")

	got, err := m.ExtractAndPersist(responseWithCookies("other=1"), Primary)
	if err != nil || got != "" {
		t.Fatalf("expected no-op, got %q err=%v", got, err)
	}
	stored, _, _ := cs.LoadLoginCookies()
	if stored != "auth=old" {
		t.Fatalf("store must be untouched, got %q", stored)
	}
}

func TestExtractAndPersist_StoreFailure(t *testing.T) {
	boom := errors.New("read-only")
	m := NewManager(failingStore{err: boom}, nil)

	got, err := m.ExtractAndPersist(responseWithCookies("auth=new"), Primary)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if got != "auth=new" {
		t.Fatalf("extracted value must be returned for a retry, got %q", got)
	}
}

func TestFilterSetCookies_ExactName(t *testing.T) {
	h := http.Header{}
	h.Add("Set-Cookie", "oauth=nope")
	h.Add("Set-Cookie", "auth=yes")
	h.Add("Set-Cookie", " twoFactorAuth=tfa")
	h.Add("Set-Cookie", "broken")

	if got := FilterSetCookies(h, "auth"); got != "auth=yes" {
		t.Errorf("auth: got %q", got)
	}
	if got := FilterSetCookies(h, "twoFactorAuth"); got != " twoFactorAuth=tfa" {
		t.Errorf("twoFactorAuth: got %q", got)
	}
}

func TestAuthToken(t *testing.T) {
	m, cs := newTestManager(t)

	if _, ok, err := m.AuthToken(); ok || err != nil {
		t.Fatalf("expected no token, got ok=%v err=%v", ok, err)
	}
	_ = cs.SaveLoginCookies("auth=authcookie_1-2; Path=/; HttpOnly")
	tok, ok, err := m.AuthToken()
	if err != nil || !ok || tok != "authcookie_1-2" {
		t.Fatalf("unexpected token %q ok=%v err=%v", tok, ok, err)
	}
}

func TestSnapshot(t *testing.T) {
	m, cs := newTestManager(t)
	_ = cs.SaveOTPCookies("twoFactorAuth=x")

	ss, err := m.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if ss.HasAuth || !ss.HasOTP || ss.OTPCookie != "twoFactorAuth=x" {
		t.Fatalf("unexpected snapshot %+v", ss)
	}
}

func TestKind(t *testing.T) {
	names := []string{Primary.CookieName(), OTP.CookieName()}
	sort.Strings(names)
	if names[0] != "auth" || names[1] != "twoFactorAuth" {
		t.Fatalf("unexpected cookie names %v", names)
	}
	if Primary.StoreKey() != "cookies" || OTP.StoreKey() != "otp_cookies" {
		t.Fatal("unexpected store keys")
	}
}
