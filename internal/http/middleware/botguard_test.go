package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestRejectAutomatedClients(t *testing.T) {
	tests := []struct {
		name       string
		userAgent  string
		secPurpose string
		wantStatus int
	}{
		{"browser", browserUA, "", http.StatusOK},
		{"browser prefetch", browserUA, "prefetch", http.StatusForbidden},
		{"link scanner", "Microsoft Outlook SafeLinks PreFetch", "", http.StatusForbidden},
		{"no user agent", "", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RejectAutomatedClients(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/invitations.accept", nil)
			req.Header.Set("User-Agent", tt.userAgent)
			if tt.secPurpose != "" {
				req.Header.Set("Sec-Purpose", tt.secPurpose)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			if !called {
				assert.Contains(t, rr.Body.String(), "Automated clients are not allowed")
			}
		})
	}
}
