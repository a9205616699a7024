// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package auth

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/tomtom215/dockvault/internal/logging"
)

func TestMain(m *testing.M) {
	// Keep the global level at info so security loggers under test still write
	logging.Init(logging.Config{Level: "info", Output: io.Discard})
	os.Exit(m.Run())
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("user=" + UsernameFromContext(r.Context())))
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	manager, err := NewBasicAuthManager("admin", "secret")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantLogged bool
	}{
		{name: "valid credentials", header: basicHeader("admin", "secret"), wantStatus: http.StatusOK, wantBody: "user=admin"},
		{name: "missing credentials", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong password", header: basicHeader("admin", "x"), wantStatus: http.StatusUnauthorized, wantLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			secLog := logging.NewSecurityLoggerWithLogger(logging.NewTestLogger(&buf))
			handler := Middleware(manager, secLog)(echoUser())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
			req.RemoteAddr = "192.0.2.10:5555"
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if !strings.Contains(rec.Header().Get("WWW-Authenticate"), `realm="Docker Volume Backup"`) {
					t.Errorf("WWW-Authenticate = %q", rec.Header().Get("WWW-Authenticate"))
				}
			} else if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}

			logged := strings.Contains(buf.String(), "auth_failure")
			if logged != tt.wantLogged {
				t.Errorf("auth failure logged = %v, want %v (log: %s)", logged, tt.wantLogged, buf.String())
			}
			if tt.wantLogged {
				if strings.Contains(buf.String(), `"admin"`) {
					t.Error("username should be masked in the security log")
				}
				if !strings.Contains(buf.String(), "192.0.2.10") {
					t.Error("client IP missing from security log")
				}
			}
		})
	}
}

func TestMiddleware_Disabled(t *testing.T) {
	t.Parallel()

	handler := Middleware(nil, nil)(echoUser())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "user=" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := ClientIP(req); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
