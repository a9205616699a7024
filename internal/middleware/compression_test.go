// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestCompression_WithGzipAccept(t *testing.T) {
	t.Parallel()

	data := strings.Repeat(`{"level":"INFO","message":"Restic: processed 10 files"}`, 50)
	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(data))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	if rec.Header().Get("Vary") != "Accept-Encoding" {
		t.Errorf("Vary = %q", rec.Header().Get("Vary"))
	}

	reader, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read decompressed data: %v", err)
	}
	if string(decompressed) != data {
		t.Error("Decompressed data doesn't match original")
	}
}

func TestCompression_Skipped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no accept-encoding", headers: map[string]string{}},
		{name: "deflate only", headers: map[string]string{"Accept-Encoding": "deflate"}},
		{name: "websocket upgrade", headers: map[string]string{"Accept-Encoding": "gzip", "Upgrade": "websocket"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Compression(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("plain"))
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Header().Get("Content-Encoding") != "" {
				t.Errorf("Content-Encoding = %q, want none", rec.Header().Get("Content-Encoding"))
			}
			if rec.Body.String() != "plain" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestCompression_BodilessResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		handle http.HandlerFunc
		status int
	}{
		{
			name:   "no content",
			handle: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
			status: http.StatusNoContent,
		},
		{
			name:   "nothing written",
			handle: func(w http.ResponseWriter, r *http.Request) {},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			rec := httptest.NewRecorder()
			Compression(tt.handle)(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Header().Get("Content-Encoding") != "" {
				t.Errorf("Content-Encoding = %q, want none", rec.Header().Get("Content-Encoding"))
			}
			if rec.Body.Len() != 0 {
				t.Errorf("body length = %d, want 0", rec.Body.Len())
			}
		})
	}
}

func TestCompression_StatusPreserved(t *testing.T) {
	t.Parallel()

	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/start", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestCompression_Concurrent(t *testing.T) {
	t.Parallel()

	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			rec := httptest.NewRecorder()
			handler(rec, req)

			reader, err := gzip.NewReader(rec.Body)
			if err != nil {
				t.Errorf("gzip reader: %v", err)
				return
			}
			body, err := io.ReadAll(reader)
			if err != nil || len(body) != 4096 {
				t.Errorf("decompressed %d bytes, err %v", len(body), err)
			}
		}()
	}
	wg.Wait()
}
