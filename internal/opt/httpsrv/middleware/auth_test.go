package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitdex/traitdex/internal/kdf/bcrypt"
)

func authHandler(t *testing.T, m *BasicAuthMiddleware) http.Handler {
	t.Helper()
	return m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.Hash("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	mw := &BasicAuthMiddleware{User: "ops", PasswordHash: hash}
	h := authHandler(t, mw)

	tests := []struct {
		name       string
		user       string
		pass       string
		noCreds    bool
		wantStatus int
	}{
		{name: "valid credentials", user: "ops", pass: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong password", user: "ops", pass: "guess", wantStatus: http.StatusForbidden},
		{name: "wrong user", user: "root", pass: "s3cret", wantStatus: http.StatusForbidden},
		{name: "no credentials", noCreds: true, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rescan", nil)
			if !tt.noCreds {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
}

func TestBasicAuth_NoUserConfiguredLocksEndpoint(t *testing.T) {
	h := authHandler(t, &BasicAuthMiddleware{})

	req := httptest.NewRequest(http.MethodPost, "/rescan", nil)
	req.SetBasicAuth("anyone", "anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
