package api

import (
	"context"
	"crypto/rand"
	"net/http"
	"testing"

	"github.com/andrebq/corkboard/internal/pwhash"
	"github.com/andrebq/corkboard/internal/testutil"
	"github.com/andrebq/corkboard/session"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func newTestAPI(ctx context.Context, t *testing.T) (http.Handler, func()) {
	t.Helper()
	store, cleanup := testutil.AcquireBoard(ctx, t)
	secret := make([]byte, session.MinSecretLen)
	if _, err := rand.Read(secret); err != nil {
		t.Fatal(err)
	}
	codec, err := session.NewCodec(secret)
	if err != nil {
		t.Fatal(err)
	}
	// the cheapest bcrypt cost keeps the suite fast
	hasher := pwhash.Hasher{Cost: 4}
	return AsHandler(ctx, store, session.NewGate(codec), codec, hasher), cleanup
}

func register(t *testing.T, h http.Handler, handle, password, confirm string) *apitest.Response {
	t.Helper()
	return apitest.Handler(h).Post("/register").
		FormData("handle", handle).
		FormData("password", password).
		FormData("password-confirm", confirm).
		Expect(t)
}

// login registers the outcome assertions and returns the session token,
// empty when no cookie was set.
func login(t *testing.T, h http.Handler, handle, password string) string {
	t.Helper()
	res := apitest.Handler(h).Post("/login").
		FormData("handle", handle).
		FormData("password", password).
		Expect(t).End()
	for _, c := range res.Response.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}

func signup(t *testing.T, h http.Handler, handle, password string) string {
	t.Helper()
	register(t, h, handle, password, password).Status(http.StatusFound).Header("Location", "/login").End()
	token := login(t, h, handle, password)
	if token == "" {
		t.Fatalf("login for %v should have set a session cookie", handle)
	}
	return token
}

func createPost(t *testing.T, h http.Handler, token, title, content string) {
	t.Helper()
	apitest.Handler(h).Post("/post/write").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		FormData("title", title).
		FormData("content", content).
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()
}

func TestRegisterLoginWriteFlow(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()

	token := signup(t, h, "alice", "secret1")
	// with the cookie the write form is served instead of a redirect
	apitest.Handler(h).Get("/post/write").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		Expect(t).Status(http.StatusOK).End()
	// without it the caller is sent to the login page
	apitest.Handler(h).Get("/post/write").
		Expect(t).Status(http.StatusFound).Header("Location", "/login").End()
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()

	register(t, h, "abc", "secret1", "secret1").
		Status(http.StatusOK).Assert(jsonpath.Present("$.error")).End()
	register(t, h, "abcd", "secret1", "secret1").
		Status(http.StatusFound).Header("Location", "/login").End()
	register(t, h, "carol", "five5", "five5").
		Status(http.StatusOK).Assert(jsonpath.Present("$.error")).End()
	register(t, h, "carol", "sixsix", "sixsix").
		Status(http.StatusFound).Header("Location", "/login").End()
	register(t, h, "daniel", "secret1", "secret2").
		Status(http.StatusOK).Assert(jsonpath.Present("$.error")).End()
	// handle already taken
	register(t, h, "abcd", "secret1", "secret1").
		Status(http.StatusOK).Assert(jsonpath.Present("$.error")).End()
}

func TestLoginRejectionsAreUndifferentiated(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	signup(t, h, "alice", "secret1")

	wrongPassword := apitest.Handler(h).Post("/login").
		FormData("handle", "alice").
		FormData("password", "wrongpw").
		Expect(t).Status(http.StatusOK).
		CookieNotPresent(session.CookieName).
		End()
	unknownUser := apitest.Handler(h).Post("/login").
		FormData("handle", "nobody-here").
		FormData("password", "secret1").
		Expect(t).Status(http.StatusOK).
		CookieNotPresent(session.CookieName).
		End()
	var a, b struct {
		Error string `json:"error"`
	}
	wrongPassword.JSON(&a)
	unknownUser.JSON(&b)
	if a.Error == "" || a.Error != b.Error {
		t.Fatalf("the two rejections should be indistinguishable: %q vs %q", a.Error, b.Error)
	}
}

func TestHomeViewVariesByIdentity(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	token := signup(t, h, "alice", "secret1")
	createPost(t, h, token, "hello", "world")

	apitest.Handler(h).Get("/").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.viewer", nil)).
		Assert(jsonpath.Equal("$.posts[0].title", "hello")).
		End()
	apitest.Handler(h).Get("/").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.viewer", "alice")).
		End()
	// a tampered cookie falls back to the anonymous view
	apitest.Handler(h).Get("/").
		Cookies(apitest.NewCookie(session.CookieName).Value(token+"x")).
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.viewer", nil)).
		End()
}

func TestPostDetail(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	token := signup(t, h, "alice", "secret1")
	createPost(t, h, token, "hello", "world")

	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.title", "hello")).
		Assert(jsonpath.Equal("$.post.content", "world")).
		End()
	apitest.Handler(h).Get("/post/999").
		Expect(t).Status(http.StatusNotFound).End()
	apitest.Handler(h).Get("/post/not-a-number").
		Expect(t).Status(http.StatusNotFound).End()
}

func TestOnlyTheWriterMayMutate(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	alice := signup(t, h, "alice", "secret1")
	bob := signup(t, h, "bobby", "secret2")
	createPost(t, h, alice, "hello", "world")

	apitest.Handler(h).Get("/post/update/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(bob)).
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Present("$.error")).End()
	apitest.Handler(h).Put("/post/update/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(bob)).
		FormData("title", "hijacked").
		FormData("content", "gotcha").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Present("$.error")).End()
	apitest.Handler(h).Delete("/post/delete/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(bob)).
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Present("$.error")).End()
	// the post survived bob, untouched
	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.title", "hello")).
		Assert(jsonpath.Equal("$.post.content", "world")).
		End()

	apitest.Handler(h).Get("/post/update/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(alice)).
		Expect(t).Status(http.StatusOK).End()
	apitest.Handler(h).Put("/post/update/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(alice)).
		FormData("title", "hello again").
		FormData("content", "world").
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()
	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.title", "hello again")).
		End()
	apitest.Handler(h).Delete("/post/delete/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(alice)).
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()
	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusNotFound).End()
}

func TestAnonymousMutationsRedirectToLogin(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	alice := signup(t, h, "alice", "secret1")
	createPost(t, h, alice, "hello", "world")

	apitest.Handler(h).Delete("/post/delete/1").
		Expect(t).Status(http.StatusFound).Header("Location", "/login").End()
	apitest.Handler(h).Put("/post/update/1").
		FormData("title", "hijacked").
		FormData("content", "gotcha").
		Expect(t).Status(http.StatusFound).Header("Location", "/login").End()
	apitest.Handler(h).Post("/post/write").
		FormData("title", "drive-by").
		FormData("content", "post").
		Expect(t).Status(http.StatusFound).Header("Location", "/login").End()
	// the post is still there, untouched
	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.title", "hello")).
		End()
}

func TestPostValidationRejections(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	token := signup(t, h, "alice", "secret1")

	apitest.Handler(h).Post("/post/write").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		FormData("title", "x").
		FormData("content", "too short a title").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Present("$.error")).End()
	apitest.Handler(h).Get("/").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.posts", nil)).
		End()

	createPost(t, h, token, "hello", "world")
	apitest.Handler(h).Put("/post/update/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		FormData("title", "x").
		FormData("content", "world").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Present("$.error")).End()
	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.title", "hello")).
		End()
}

func TestMethodOverride(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	token := signup(t, h, "alice", "secret1")
	createPost(t, h, token, "hello", "world")

	// an HTML form can only POST, _method carries the real verb
	apitest.Handler(h).Post("/post/update/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		FormData("_method", "put").
		FormData("title", "edited").
		FormData("content", "world").
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()
	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.title", "edited")).
		End()
	apitest.Handler(h).Post("/post/delete/1").
		Cookies(apitest.NewCookie(session.CookieName).Value(token)).
		FormData("_method", "delete").
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()
	apitest.Handler(h).Get("/post/1").
		Expect(t).Status(http.StatusNotFound).End()
}

func TestLogoutClearsTheCookie(t *testing.T) {
	ctx := context.Background()
	h, cleanup := newTestAPI(ctx, t)
	defer cleanup()
	res := apitest.Handler(h).Get("/logout").
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()
	for _, c := range res.Response.Cookies() {
		if c.Name == session.CookieName && c.MaxAge >= 0 {
			t.Fatalf("logout should expire the cookie, got MaxAge %v", c.MaxAge)
		}
	}
}
