package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// captureOutput captures stdout and stderr during function execution.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	outC := make(chan string)
	errC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, rOut)
		outC <- buf.String()
	}()
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, rErr)
		errC <- buf.String()
	}()

	f()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	stdout, stderr = <-outC, <-errC
	rOut.Close()
	rErr.Close()
	return
}

func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", notExpected, output)
	}
}

// assertErrorFormat checks the "spectre: cmd[action]:" runtime error format.
func assertErrorFormat(t *testing.T, output, cmd, action string) {
	t.Helper()
	pattern := "spectre: " + cmd + "[" + action + "]:"
	if !strings.Contains(output, pattern) {
		t.Errorf("expected error format %q, got:\n%s", pattern, output)
	}
}

// runCLI executes the app with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var err error
	stdout, stderr = captureOutput(func() {
		err = Execute(append([]string{"spectre"}, args...), BuildArgs{Version: "1.0.0", BuildType: "test"})
	})
	if err != nil {
		t.Fatalf("Execute(%v): %v", args, err)
	}
	return
}

// fakeVRChat serves the API under /api and the public web API under /web.
func fakeVRChat(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/user", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"message":"Missing Credentials","status_code":401}}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth", Value: "authcookie_1", Path: "/"})
		io.WriteString(w, `{"requiresTwoFactorAuth":["totp","otp"]}`)
	})
	mux.HandleFunc("POST /api/auth/twofactorauth/totp/verify", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"123456"`) {
			io.WriteString(w, `{"verified":false}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "twoFactorAuth", Value: "tfa_1", Path: "/"})
		io.WriteString(w, `{"verified":true}`)
	})
	mux.HandleFunc("PUT /api/logout", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":{"message":"Ok!","status_code":200}}`)
	})
	mux.HandleFunc("GET /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("auth"); err != nil || c.Value != "authcookie_1" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"unauthorized"}`)
			return
		}
		io.WriteString(w, `{"id":"`+r.PathValue("id")+`"}`)
	})
	mux.HandleFunc("/api/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		io.WriteString(w, r.Method+" "+r.Header.Get("X-Test")+" "+string(body))
	})
	mux.HandleFunc("GET /web/time", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "\"2026-10-16T12:00:00+00:00\"\n")
	})
	mux.HandleFunc("GET /web/visits", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "31337")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setupEnv points the configuration at a fresh directory and srv.
func setupEnv(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SPECTRE_CONFIG_DIR", dir)
	t.Setenv("SPECTRE_HTTP_TIMEOUT", "5s")
	t.Setenv("SPECTRE_DEBUG", "")
	t.Setenv("SPECTRE_PROXY", "")
	t.Setenv("SPECTRE_RPC_SECRET", "")
	t.Setenv("SPECTRE_RPC_PORT", "")
	t.Setenv("SPECTRE_RPC_LISTEN_ALL", "")
	t.Setenv("SPECTRE_PIPELINE_URL", "")
	t.Setenv("SPECTRE_LOG_FILE", "")
	if srv != nil {
		t.Setenv("SPECTRE_API_BASE", srv.URL+"/api")
		t.Setenv("SPECTRE_WEB_BASE", srv.URL+"/web")
	} else {
		t.Setenv("SPECTRE_API_BASE", "")
		t.Setenv("SPECTRE_WEB_BASE", "")
	}
	return dir
}
