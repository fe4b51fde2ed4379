package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/middleware/identity"
)

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return s
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(r *http.Request)
		want    identity.Actor
		wantErr bool
	}{
		{
			name: "bearer token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token(t, jwt.MapClaims{"sub": "7", "role": "agent"}))
			},
			want: identity.Actor{Kind: domain.AudienceAgent, ID: 7},
		},
		{
			name:  "actor header",
			setup: func(r *http.Request) { r.Header.Set(identity.HeaderActor, "pharmacy:12") },
			want:  identity.Actor{Kind: domain.AudiencePharmacy, ID: 12},
		},
		{
			name: "query token",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("access_token", token(t, jwt.MapClaims{"sub": "3", "role": "Customer"}))
				r.URL.RawQuery = q.Encode()
			},
			want: identity.Actor{Kind: domain.AudienceCustomer, ID: 3},
		},
		{
			name:    "nothing",
			setup:   func(*http.Request) {},
			wantErr: true,
		},
		{
			name:    "basic auth",
			setup:   func(r *http.Request) { r.Header.Set("Authorization", "Basic Zm9vOmJhcg==") },
			wantErr: true,
		},
		{
			name:    "garbage token",
			setup:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantErr: true,
		},
		{
			name: "unknown role",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token(t, jwt.MapClaims{"sub": "7", "role": "admin"}))
			},
			wantErr: true,
		},
		{
			name:    "non numeric id",
			setup:   func(r *http.Request) { r.Header.Set(identity.HeaderActor, "agent:x") },
			wantErr: true,
		},
		{
			name:    "zero id",
			setup:   func(r *http.Request) { r.Header.Set(identity.HeaderActor, "agent:0") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			tt.setup(r)
			got, err := identity.FromRequest(r)
			if tt.wantErr {
				require.ErrorIs(t, err, identity.ErrNoIdentity)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen identity.Actor
	h := identity.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := identity.FromContext(r.Context())
		require.True(t, ok)
		seen = a
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(identity.HeaderActor, "agent:5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, seen.IsAgent(5))
	require.Equal(t, domain.AgentAudience(5), seen.Audience())
	require.Equal(t, "agent:5", seen.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
