package cookiestore

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := Open(fs, "/app", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, fs
}

func TestLoginCookies_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	cases := []string{
		"auth=authcookie_1234; Path=/",
		"auth=abc123",
		"",
		`auth="quoted"; Expires=Tue, 01 Jan 2030 00:00:00 GMT; HttpOnly`,
		"  padded  ",
	}
	for _, c := range cases {
		if err := s.SaveLoginCookies(c); err != nil {
			t.Fatalf("SaveLoginCookies(%q): %v", c, err)
		}
		got, ok, err := s.LoadLoginCookies()
		if err != nil || !ok {
			t.Fatalf("LoadLoginCookies after %q: ok=%v err=%v", c, ok, err)
		}
		if got != c {
			t.Errorf("round trip: expected %q, got %q", c, got)
		}
	}
}

func TestLoad_EmptyStore(t *testing.T) {
	s, _ := newTestStore(t)

	if v, ok, err := s.LoadLoginCookies(); err != nil || ok || v != "" {
		t.Fatalf("expected absent login cookie, got %q ok=%v err=%v", v, ok, err)
	}
	if v, ok, err := s.LoadOTPCookies(); err != nil || ok || v != "" {
		t.Fatalf("expected absent otp cookie, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestAsymmetricWrapping(t *testing.T) {
	s, fs := newTestStore(t)

	if err := s.SaveLoginCookies("auth=a"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveOTPCookies("twoFactorAuth=b"); err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(fs, s.Path())
	if err != nil {
		t.Fatal(err)
	}
	doc := gjson.ParseBytes(data)
	if got := doc.Get("cookies.value").String(); got != "auth=a" {
		t.Errorf("cookies.value: expected auth=a, got %q (%s)", got, data)
	}
	if doc.Get("cookies.otp").Exists() {
		t.Errorf("primary entry must not use the otp field: %s", data)
	}
	if got := doc.Get("otp_cookies.otp").String(); got != "twoFactorAuth=b" {
		t.Errorf("otp_cookies.otp: expected twoFactorAuth=b, got %q (%s)", got, data)
	}
	if doc.Get("otp_cookies.value").Exists() {
		t.Errorf("otp entry must not use the value field: %s", data)
	}
}

func TestReadsExistingFile(t *testing.T) {
	s, fs := newTestStore(t)

	doc := `{"cookies":{"value":"auth=from-disk"},"otp_cookies":{"otp":"twoFactorAuth=x; Path=/"}}`
	if err := afero.WriteFile(fs, s.Path(), []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := s.LoadLoginCookies(); !ok || v != "auth=from-disk" {
		t.Fatalf("unexpected login cookie %q ok=%v", v, ok)
	}
	if v, ok, _ := s.LoadOTPCookies(); !ok || v != "twoFactorAuth=x; Path=/" {
		t.Fatalf("unexpected otp cookie %q ok=%v", v, ok)
	}
}

func TestWrongWrapperReadsAbsent(t *testing.T) {
	s, fs := newTestStore(t)

	doc := `{"cookies":{"otp":"auth=swapped"},"otp_cookies":"bare"}`
	if err := afero.WriteFile(fs, s.Path(), []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.LoadLoginCookies(); ok || err != nil {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.LoadOTPCookies(); ok || err != nil {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}
}

func TestClearLoginCookies_KeepsOTP(t *testing.T) {
	s, _ := newTestStore(t)

	_ = s.SaveLoginCookies("auth=a")
	_ = s.SaveOTPCookies("twoFactorAuth=b")
	if err := s.ClearLoginCookies(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.LoadLoginCookies(); ok {
		t.Fatal("login cookie should be cleared")
	}
	if _, ok, _ := s.LoadOTPCookies(); !ok {
		t.Fatal("otp cookie should remain")
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.LoadOTPCookies(); ok {
		t.Fatal("Clear should remove the otp cookie")
	}
}

func TestUnknownKey(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Set("session", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if _, _, err := s.Get("session"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestClear_RecoversCorruptFile(t *testing.T) {
	s, fs := newTestStore(t)
	if err := afero.WriteFile(fs, s.Path(), []byte(`{"cookies": {"value": "auth=x"`), 0600); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on corrupt file: %v", err)
	}
	if _, ok, err := s.LoadLoginCookies(); err != nil || ok {
		t.Fatalf("LoadLoginCookies after Clear: ok=%v err=%v", ok, err)
	}
	if err := s.SaveLoginCookies("auth=fresh"); err != nil {
		t.Fatalf("SaveLoginCookies after Clear: %v", err)
	}
}

func TestSave_RecoversCorruptFile(t *testing.T) {
	s, fs := newTestStore(t)
	if err := afero.WriteFile(fs, s.Path(), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveOTPCookies("twoFactorAuth=t"); err != nil {
		t.Fatalf("SaveOTPCookies on corrupt file: %v", err)
	}
	got, ok, err := s.LoadOTPCookies()
	if err != nil || !ok || got != "twoFactorAuth=t" {
		t.Fatalf("LoadOTPCookies = %q, %v, %v", got, ok, err)
	}
	if raw, _ := afero.ReadFile(fs, s.Path()); !gjson.ValidBytes(raw) {
		t.Fatalf("store not rewritten as JSON: %s", raw)
	}
}
