package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/andrebq/corkboard/board"
	"github.com/andrebq/corkboard/internal/logutil"
	"github.com/andrebq/corkboard/internal/pwhash"
	"github.com/andrebq/corkboard/session"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

type (
	handler struct {
		store  *board.Store
		gate   *session.Gate
		codec  *session.Codec
		hasher pwhash.Hasher
		log    zerolog.Logger
	}
)

// minPasswordLen is the shortest password registration accepts. Enforced
// here rather than in pwhash, bcrypt happily hashes empty strings.
const minPasswordLen = 6

// AsHandler exposes the full board over HTTP. Reads are open to anyone,
// writes require a session, and mutating an existing post additionally
// requires owning it.
func AsHandler(ctx context.Context, store *board.Store, gate *session.Gate, codec *session.Codec, hasher pwhash.Hasher) http.Handler {
	h := &handler{
		store:  store,
		gate:   gate,
		codec:  codec,
		hasher: hasher,
		log:    logutil.GetOrDefault(ctx),
	}
	router := httprouter.New()
	router.HandlerFunc("GET", "/", h.home)
	router.HandlerFunc("GET", "/login", h.loginForm)
	router.HandlerFunc("POST", "/login", h.login)
	router.HandlerFunc("GET", "/logout", h.logout)
	router.HandlerFunc("GET", "/register", h.registerForm)
	router.HandlerFunc("POST", "/register", h.register)
	router.Handler("POST", "/post/write", gate.Require(http.HandlerFunc(h.writePost)))
	// httprouter keeps one tree per method, so the GET side of /post
	// cannot mix static segments with the :id wildcard. A single
	// catch-all dispatches the three GET pages and lets each apply its
	// own auth policy.
	router.HandlerFunc("GET", "/post/*rest", h.postPages)
	router.Handler("PUT", "/post/update/:id", gate.Require(http.HandlerFunc(h.updatePost)))
	router.Handler("DELETE", "/post/delete/:id", gate.Require(http.HandlerFunc(h.deletePost)))
	return Override(router)
}

// GET /
func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.serverFault(w, err, "unable to list posts")
		return
	}
	h.writeJSON(w, struct {
		Viewer *string      `json:"viewer"`
		Posts  []board.Post `json:"posts"`
	}{h.viewer(r), posts})
}

// GET /post/*rest, dispatching /post/write, /post/update/:id and
// /post/:id pages.
func (h *handler) postPages(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(httprouter.ParamsFromContext(r.Context()).ByName("rest"), "/")
	id, result := h.gate.Resolve(r)
	switch {
	case rest == "write":
		if result != session.Authenticated {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.writeHTML(w, writeFormHTML)
	case strings.HasPrefix(rest, "update/"):
		if result != session.Authenticated {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.updateForm(w, r, id, strings.TrimPrefix(rest, "update/"))
	default:
		h.showPost(w, r, rest)
	}
}

// GET /post/:id
func (h *handler) showPost(w http.ResponseWriter, r *http.Request, rawID string) {
	post, ok := h.lookupPost(w, r, rawID)
	if !ok {
		return
	}
	h.writeJSON(w, struct {
		Viewer *string    `json:"viewer"`
		Post   board.Post `json:"post"`
	}{h.viewer(r), post})
}

// GET /post/update/:id
func (h *handler) updateForm(w http.ResponseWriter, r *http.Request, caller session.Identity, rawID string) {
	post, ok := h.lookupPost(w, r, rawID)
	if !ok {
		return
	}
	if err := board.Authorize(caller.User, post); err != nil {
		h.reject(w, "only the writer of a post may update it")
		return
	}
	var buf bytes.Buffer
	if err := updateFormTmpl.Execute(&buf, post); err != nil {
		h.serverFault(w, err, "unable to render update form")
		return
	}
	h.writeHTML(w, buf.String())
}

// POST /post/write
func (h *handler) writePost(w http.ResponseWriter, r *http.Request) {
	caller, _ := session.IdentityFrom(r.Context())
	_, err := h.store.CreatePost(r.Context(), caller.User, r.PostFormValue("title"), r.PostFormValue("content"))
	var invalid board.InvalidPost
	if errors.As(err, &invalid) {
		h.reject(w, invalid.Error())
		return
	} else if err != nil {
		h.serverFault(w, err, "unable to store post")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// PUT /post/update/:id
func (h *handler) updatePost(w http.ResponseWriter, r *http.Request) {
	caller, _ := session.IdentityFrom(r.Context())
	post, ok := h.lookupPost(w, r, httprouter.ParamsFromContext(r.Context()).ByName("id"))
	if !ok {
		return
	}
	if err := board.Authorize(caller.User, post); err != nil {
		h.reject(w, "only the writer of a post may update it")
		return
	}
	err := h.store.UpdatePost(r.Context(), post.ID, caller.User, r.PostFormValue("title"), r.PostFormValue("content"))
	if !h.mutationOutcome(w, err, "update") {
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// DELETE /post/delete/:id
func (h *handler) deletePost(w http.ResponseWriter, r *http.Request) {
	caller, _ := session.IdentityFrom(r.Context())
	post, ok := h.lookupPost(w, r, httprouter.ParamsFromContext(r.Context()).ByName("id"))
	if !ok {
		return
	}
	if err := board.Authorize(caller.User, post); err != nil {
		h.reject(w, "only the writer of a post may delete it")
		return
	}
	err := h.store.DeletePost(r.Context(), post.ID, caller.User)
	if !h.mutationOutcome(w, err, "delete") {
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// GET /login
func (h *handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.writeHTML(w, loginFormHTML)
}

// POST /login
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	handle := r.PostFormValue("handle")
	password := r.PostFormValue("password")
	user, stored, err := h.store.LookupUser(r.Context(), handle)
	if err == nil && h.hasher.Verify(password, stored) {
		token, err := h.codec.Issue(user.ID)
		if err != nil {
			h.serverFault(w, err, "unable to issue session token")
			return
		}
		session.SetCookie(w, token)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	var notFound board.UserNotFound
	if err != nil && !errors.As(err, &notFound) {
		h.serverFault(w, err, "unable to lookup user")
		return
	}
	// an unknown handle and a wrong password read the same from the
	// outside, anything more specific helps enumeration
	h.reject(w, "invalid credentials")
}

// GET /logout
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// GET /register
func (h *handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.writeHTML(w, registerFormHTML)
}

// POST /register
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	handle := r.PostFormValue("handle")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("password-confirm")
	if utf8.RuneCountInString(password) < minPasswordLen {
		h.reject(w, fmt.Sprintf("passwords must have at least %v characters", minPasswordLen))
		return
	}
	if password != confirm {
		h.reject(w, "password confirmation does not match")
		return
	}
	blob, err := h.hasher.Hash(password)
	if err != nil {
		h.serverFault(w, err, "unable to hash password")
		return
	}
	_, err = h.store.CreateUser(r.Context(), handle, blob)
	var taken board.HandleTaken
	var short board.InvalidHandle
	if errors.As(err, &taken) || errors.As(err, &short) {
		h.reject(w, err.Error())
		return
	} else if err != nil {
		h.serverFault(w, err, "unable to store user")
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// lookupPost parses rawID and loads the post, answering 404 on its own
// when either step fails.
func (h *handler) lookupPost(w http.ResponseWriter, r *http.Request, rawID string) (board.Post, bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.Error(w, "post not found", http.StatusNotFound)
		return board.Post{}, false
	}
	post, err := h.store.LookupPost(r.Context(), id)
	var missing board.PostNotFound
	if errors.As(err, &missing) {
		http.Error(w, "post not found", http.StatusNotFound)
		return board.Post{}, false
	} else if err != nil {
		h.serverFault(w, err, "unable to lookup post")
		return board.Post{}, false
	}
	return post, true
}

// mutationOutcome maps the conditional-write result to a response,
// returning true when the mutation went through. The not-owner case can
// still show up here when a delete raced the authorization check.
func (h *handler) mutationOutcome(w http.ResponseWriter, err error, verb string) bool {
	var invalid board.InvalidPost
	var denied board.NotOwner
	var missing board.PostNotFound
	switch {
	case err == nil:
		return true
	case errors.As(err, &invalid):
		h.reject(w, invalid.Error())
	case errors.As(err, &denied):
		h.reject(w, fmt.Sprintf("only the writer of a post may %v it", verb))
	case errors.As(err, &missing):
		http.Error(w, "post not found", http.StatusNotFound)
	default:
		h.serverFault(w, err, "unable to "+verb+" post")
	}
	return false
}

// viewer resolves the handle shown on read views, nil for anonymous
// callers. A token for an unknown id renders the anonymous view instead
// of failing the read.
func (h *handler) viewer(r *http.Request) *string {
	id, result := h.gate.Resolve(r)
	if result != session.Authenticated {
		return nil
	}
	user, err := h.store.UserByID(r.Context(), id.User)
	if err != nil {
		return nil
	}
	return &user.Handle
}

func (h *handler) reject(w http.ResponseWriter, msg string) {
	// rejections ride on a success status, the request itself worked,
	// the board just refused the content
	h.writeJSON(w, struct {
		Error string `json:"error"`
	}{msg})
}

func (h *handler) serverFault(w http.ResponseWriter, err error, msg string) {
	h.log.Error().Err(err).Msg(msg)
	http.Error(w, "the board is misbehaving, try again later", http.StatusInternalServerError)
}

func (h *handler) writeJSON(w http.ResponseWriter, body interface{}) {
	buf, err := json.Marshal(body)
	if err != nil {
		h.serverFault(w, err, "unable to encode response")
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.Header().Add("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}

func (h *handler) writeHTML(w http.ResponseWriter, body string) {
	w.Header().Add("Content-Type", "text/html; charset=utf-8")
	w.Header().Add("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, body)
}
