// Package identity resolves the caller of a request. Tokens are issued and
// verified upstream; this package only reads them.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"courier-dispatch/internal/domain"
)

// KindService marks trusted backend callers such as the pharmacy platform.
const KindService domain.AudienceKind = "service"

// HeaderActor carries "<kind>:<id>" when no bearer token is present.
const HeaderActor = "X-Actor"

// ErrNoIdentity is returned when a request carries no usable identity.
var ErrNoIdentity = errors.New("identity: missing or malformed")

// Actor is the authenticated caller.
type Actor struct {
	Kind domain.AudienceKind
	ID   int64
}

// Audience returns the caller's own notification room.
func (a Actor) Audience() domain.Audience {
	switch a.Kind {
	case domain.AudienceAgent:
		return domain.AgentAudience(a.ID)
	case domain.AudienceCustomer:
		return domain.CustomerAudience(a.ID)
	case domain.AudiencePharmacy:
		return domain.PharmacyAudience(a.ID)
	default:
		return domain.Audience{Kind: a.Kind, Key: strconv.FormatInt(a.ID, 10)}
	}
}

// IsAgent reports whether the caller is the agent id.
func (a Actor) IsAgent(id int64) bool {
	return a.Kind == domain.AudienceAgent && a.ID == id
}

// String formats the actor the way HeaderActor expects it.
func (a Actor) String() string {
	return string(a.Kind) + ":" + strconv.FormatInt(a.ID, 10)
}

type ctxKey struct{}

// WithActor stores a in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor stored by Middleware.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// Middleware rejects requests without an identity with 401.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := FromRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
	})
}

// FromRequest reads "Authorization: Bearer <jwt>" first and falls back to
// HeaderActor. The token's "role" claim is the kind and "sub" the id.
func FromRequest(r *http.Request) (Actor, error) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return Actor{}, ErrNoIdentity
		}
		return fromToken(strings.TrimSpace(raw))
	}
	if h := r.Header.Get(HeaderActor); h != "" {
		return Parse(h)
	}
	// browsers cannot set headers on a websocket handshake
	if q := r.URL.Query().Get("access_token"); q != "" {
		return fromToken(q)
	}
	return Actor{}, ErrNoIdentity
}

// Parse decodes "<kind>:<id>".
func Parse(s string) (Actor, error) {
	kind, rawID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Actor{}, ErrNoIdentity
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrNoIdentity, err)
	}
	return newActor(kind, id)
}

func fromToken(raw string) (Actor, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrNoIdentity, err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrNoIdentity, err)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrNoIdentity, err)
	}
	role, _ := claims["role"].(string)
	return newActor(role, id)
}

func newActor(kind string, id int64) (Actor, error) {
	if id <= 0 {
		return Actor{}, ErrNoIdentity
	}
	k := domain.AudienceKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case domain.AudienceAgent, domain.AudienceCustomer, domain.AudiencePharmacy, KindService:
		return Actor{Kind: k, ID: id}, nil
	default:
		return Actor{}, ErrNoIdentity
	}
}
