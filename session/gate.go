package session

import (
	"context"
	"net/http"
)

type (
	// Identity is the resolved caller of a request, referenced by the
	// durable user id.
	Identity struct {
		User int64
	}

	// Result classifies what the gate found out about a request.
	Result int

	// Gate resolves the caller identity of inbound requests from the
	// session cookie. Resolving has no side effects, what happens to an
	// anonymous caller is the route's call to make.
	Gate struct {
		codec     *Codec
		memo      *memo
		loginPath string
	}

	ctxKey byte
)

const (
	// Anonymous requests carry no session cookie at all.
	Anonymous Result = iota
	// Authenticated requests carried a token that passed verification.
	Authenticated
	// Invalid requests carried a token that failed verification.
	Invalid
)

var identityKey = ctxKey(1)

func NewGate(codec *Codec) *Gate {
	return &Gate{codec: codec, memo: newMemo(), loginPath: "/login"}
}

// Resolve inspects the session cookie of r and returns what it found.
// Recently verified tokens are answered from the memo, tokens with an
// age limit are always re-verified.
func (g *Gate) Resolve(r *http.Request) (Identity, Result) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, Anonymous
	}
	if g.codec.maxAge == 0 {
		if user, ok := g.memo.lookup(cookie.Value); ok {
			return Identity{User: user}, Authenticated
		}
	}
	user, err := g.codec.Verify(cookie.Value)
	if err != nil {
		return Identity{}, Invalid
	}
	if g.codec.maxAge == 0 {
		g.memo.save(cookie.Value, user)
	}
	return Identity{User: user}, Authenticated
}

// Require sends Anonymous and Invalid callers to the login page, the
// wrapped handler only ever runs with an identity in the request context.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, res := g.Resolve(r)
		if res != Authenticated {
			http.Redirect(w, r, g.loginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches the identity when the caller has a valid token and
// proceeds anonymously otherwise.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, res := g.Resolve(r)
		if res == Authenticated {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity attached by the gate, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return Identity{}, false
	}
	return v.(Identity), true
}
