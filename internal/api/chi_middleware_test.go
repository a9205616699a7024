// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	m := NewChiMiddleware(nil)

	if m.config == nil {
		t.Fatal("config is nil")
	}
	// Secure by default: no cross-origin access until configured
	if len(m.config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want []", m.config.CORSAllowedOrigins)
	}
	if m.config.RateLimitRequests != 100 || m.config.StartRateLimitRequests != 10 {
		t.Errorf("limits = %d/%d, want 100/10", m.config.RateLimitRequests, m.config.StartRateLimitRequests)
	}
}

func TestNewChiMiddlewareFromSecurity(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		m := NewChiMiddlewareFromSecurity([]string{"https://a.example"}, 200, 3, 2*time.Minute, true)
		if len(m.config.CORSAllowedOrigins) != 1 {
			t.Errorf("CORSAllowedOrigins = %v", m.config.CORSAllowedOrigins)
		}
		if m.config.RateLimitRequests != 200 || m.config.StartRateLimitRequests != 3 {
			t.Errorf("limits = %d/%d, want 200/3", m.config.RateLimitRequests, m.config.StartRateLimitRequests)
		}
		if m.config.RateLimitWindow != 2*time.Minute {
			t.Errorf("RateLimitWindow = %v, want 2m", m.config.RateLimitWindow)
		}
		if !m.config.RateLimitDisabled {
			t.Error("RateLimitDisabled should be true")
		}
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		m := NewChiMiddlewareFromSecurity(nil, 0, 0, 0, false)
		if m.config.RateLimitRequests != 100 || m.config.StartRateLimitRequests != 10 {
			t.Errorf("limits = %d/%d, want 100/10", m.config.RateLimitRequests, m.config.StartRateLimitRequests)
		}
		if m.config.RateLimitWindow != time.Minute {
			t.Errorf("RateLimitWindow = %v, want 1m", m.config.RateLimitWindow)
		}
	})
}

func TestChiMiddleware_CORS_Preflight(t *testing.T) {
	m := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://backup.example"},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         600,
	})
	handler := m.CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name      string
		origin    string
		wantAllow string
	}{
		{name: "allowed origin", origin: "https://backup.example", wantAllow: "https://backup.example"},
		{name: "other origin", origin: "https://evil.example", wantAllow: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "GET")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestChiMiddleware_RateLimitDisabled(t *testing.T) {
	m := NewChiMiddlewareFromSecurity(nil, 1, 1, time.Minute, true)
	handler := m.RateLimitStart()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/backup/start", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d, want 204", i, w.Code)
		}
	}
}

func TestChiMiddleware_RateLimitExceededEnvelope(t *testing.T) {
	m := NewChiMiddlewareFromSecurity(nil, 1, 1, time.Minute, false)
	handler := m.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	resp := decodeResponse(t, last, nil)
	if resp.Error == nil || resp.Error.Code != ErrCodeRateLimited {
		t.Errorf("error = %+v, want RATE_LIMIT_EXCEEDED", resp.Error)
	}
}
