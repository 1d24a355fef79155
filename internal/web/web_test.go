package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	Index().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "/login/spotify") {
		t.Error("expected login link in page")
	}
}

func TestStatic(t *testing.T) {
	tests := []struct {
		path   string
		status int
	}{
		{"/static/app.js", http.StatusOK},
		{"/static/app.css", http.StatusOK},
		{"/static/missing.js", http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.status, rec.Code)
		}
	}
}

func TestFrontend(t *testing.T) {
	f := NewFrontend()

	if got := strings.Join(f.Routes(), " "); got != "/{$} /static/" {
		t.Errorf("unexpected routes %q", got)
	}

	tests := []struct {
		path        string
		contentType string
	}{
		{"/", "text/html"},
		{"/static/app.css", "text/css"},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", tc.path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tc.contentType) {
			t.Errorf("%s: expected %s, got %s", tc.path, tc.contentType, ct)
		}
	}
}
