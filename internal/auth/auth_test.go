package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/auth"
)

func newIssuer(t *testing.T, secret string) *auth.Issuer {
	t.Helper()

	iss, err := auth.NewIssuer(secret, "voicebill", time.Hour)
	require.NoError(t, err)

	return iss
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := newIssuer(t, "s3cret")

	token, err := iss.Issue("acct-1")
	require.NoError(t, err)

	got, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", got)
}

func TestIssuer_Verify_Rejects(t *testing.T) {
	token, err := newIssuer(t, "other").Issue("acct-1")
	require.NoError(t, err)

	expiredIss, err := auth.NewIssuer("s3cret", "voicebill", -time.Minute)
	require.NoError(t, err)

	expired, err := expiredIss.Issue("acct-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "WrongSecret", token: token},
		{name: "Expired", token: expired},
		{name: "Garbage", token: "not.a.token"},
	}

	iss := newIssuer(t, "s3cret")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrUnauthorized)
		})
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := auth.NewIssuer("", "voicebill", time.Hour)
	assert.ErrorIs(t, err, auth.ErrNoSecret)
}

func TestIssuer_Middleware(t *testing.T) {
	iss := newIssuer(t, "s3cret")

	token, err := iss.Issue("acct-1")
	require.NoError(t, err)

	var seen string

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.AccountID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	onError := func(w http.ResponseWriter, _ *http.Request, err error) {
		assert.True(t, errors.Is(err, auth.ErrUnauthorized))
		w.WriteHeader(http.StatusUnauthorized)
	}

	handler := iss.Middleware(onError)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "Valid", header: "Bearer " + token, want: http.StatusNoContent},
		{name: "LowercaseScheme", header: "bearer " + token, want: http.StatusNoContent},
		{name: "Missing", header: "", want: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "Invalid", header: "Bearer nope", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusNoContent {
				assert.Equal(t, "acct-1", seen)
			}
		})
	}
}
