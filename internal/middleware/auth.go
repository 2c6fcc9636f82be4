// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// TokenAuth checks API requests against a bcrypt hash of the API token.
type TokenAuth struct {
	hash []byte

	mu       sync.Mutex
	verified []byte // last token that matched the hash
}

// NewTokenAuth creates a checker for hash. An empty hash disables auth.
func NewTokenAuth(hash string) *TokenAuth {
	return &TokenAuth{hash: []byte(strings.TrimSpace(hash))}
}

// Enabled reports whether a token is required.
func (a *TokenAuth) Enabled() bool {
	return len(a.hash) > 0
}

// Require rejects requests without a valid token with 401. The token is
// read from "Authorization: Bearer <token>" or the X-API-Token header.
func (a *TokenAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		token := requestToken(r)
		if token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="autoblog"`)
			writeError(w, http.StatusUnauthorized, "missing API token")
			return
		}
		if !a.valid(token) {
			writeError(w, http.StatusUnauthorized, "invalid API token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// valid compares token with the hash. A token that already matched is
// accepted without running bcrypt again.
func (a *TokenAuth) valid(token string) bool {
	tb := []byte(token)

	a.mu.Lock()
	cached := a.verified
	a.mu.Unlock()
	if cached != nil && subtle.ConstantTimeCompare(cached, tb) == 1 {
		return true
	}

	if bcrypt.CompareHashAndPassword(a.hash, tb) != nil {
		return false
	}
	a.mu.Lock()
	a.verified = tb
	a.mu.Unlock()
	return true
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("X-API-Token"))
}
