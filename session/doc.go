// Package session issues and verifies the signed tokens corkboard uses
// instead of a server-side session table.
//
// A token is a JWT carrying the user id and the issuance time, signed
// with a process-wide secret. Whoever holds a valid token is that user,
// the server keeps no per-session state, which also means a token cannot
// be revoked before the secret rotates. By default tokens never expire,
// callers that want a bounded lifetime opt in with MaxAge.
//
// The gate half of the package turns token verification into a typed
// answer (Authenticated / Anonymous / Invalid) and leaves the policy of
// what to do with an anonymous caller to each route.
package session
