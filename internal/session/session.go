// Package session resolves the anonymous cart owner for a request. Identity
// is an opaque uuid in a long-lived cookie; there is no account behind it.
package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	CookieName = "leo_sid"
	maxAge     = 30 * 24 * 60 * 60
)

type ctxKey struct{}

// Resolve returns the caller's session id. If the request carries no valid
// cookie it returns a fresh id together with the cookie to set; otherwise
// the second return is nil. Pure: nothing is written here, so the cart and
// order stores never see a framework request object.
func Resolve(r *http.Request) (string, *http.Cookie) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	sid := uuid.NewString()
	return sid, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
	}
}

// Middleware resolves the session once per request, sets the cookie for new
// visitors and exposes the id via FromContext.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, set := Resolve(r)
		if set != nil {
			http.SetCookie(w, set)
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func FromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxKey{}).(string)
	return sid, ok && sid != ""
}
