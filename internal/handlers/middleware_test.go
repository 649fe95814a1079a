package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestValidateStreamRequest(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	handler := ValidateStreamRequest(next)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no query", "", http.StatusOK},
		{"empty datastar state", "datastar=", http.StatusOK},
		{"known signals", "datastar=" + url.QueryEscape(`{"name":"Ana","game":1,"round":1,"secondsLeft":3}`), http.StatusOK},
		{"unknown parameter", "debug=1", http.StatusBadRequest},
		{"unknown signal", "datastar=" + url.QueryEscape(`{"isHost":true}`), http.StatusBadRequest},
		{"invalid json", "datastar=" + url.QueryEscape(`{`), http.StatusBadRequest},
		{"repeated datastar", "datastar=&datastar=", http.StatusBadRequest},
		{"oversized state", "datastar=" + strings.Repeat("a", maxDatastarState+1), http.StatusBadRequest},
		{"oversized query", "datastar=" + strings.Repeat("a", maxStreamQuery+1), http.StatusRequestURITooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/rooms/AB12/events?"+tt.query, nil)
			w := httptest.NewRecorder()
			handler(w, req)
			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}
