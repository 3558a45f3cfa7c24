package session

import "net/http"

// CookieName names the cookie that carries the session token.
const CookieName = "token"

// SetCookie hands a freshly minted token to the caller. HttpOnly, so
// scripts running on the page never see the token.
func SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

// ClearCookie destroys the caller-held half of the session. There is no
// server-held half.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
