// Package token reads the bearer credential kept in session storage and
// derives the display username from it. It never validates signatures or
// expiry: the API server is the enforcement point.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// StorageKey is the session storage key holding the credential.
const StorageKey = "authToken"

// TestPrefix marks plain test-mode credentials issued by local auth stubs.
const TestPrefix = "session-token-for-"

// Storage is the key/value session storage a Reader works against.
type Storage interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// Claims is the subset of the token payload the front-end cares about.
type Claims struct {
	Username string `json:"username"`
}

// DecodeError reports a credential that could not be decoded. It is never
// surfaced to users; callers treat it as anonymous.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token: %s: %v", e.Reason, e.Err)
	}
	return "token: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Reader exposes the credential held in a Storage.
type Reader struct {
	store Storage
}

// NewReader returns a Reader backed by s.
func NewReader(s Storage) *Reader {
	return &Reader{store: s}
}

// CurrentToken returns the stored credential, or "" when absent.
func (r *Reader) CurrentToken() string {
	if r == nil || r.store == nil {
		return ""
	}
	return r.store.Get(StorageKey)
}

// IsAuthenticated reports whether any credential is stored.
func (r *Reader) IsAuthenticated() bool {
	return r.CurrentToken() != ""
}

// CurrentUsername returns the username encoded in the credential, or "".
func (r *Reader) CurrentUsername() string {
	return Username(r.CurrentToken())
}

// Store saves tok as the session credential.
func (r *Reader) Store(tok string) {
	r.store.Set(StorageKey, tok)
}

// Clear removes the session credential.
func (r *Reader) Clear() {
	r.store.Delete(StorageKey)
}

// Username derives the display username from tok. Decode failures yield "".
func Username(tok string) string {
	if tok == "" {
		return ""
	}
	if strings.HasPrefix(tok, TestPrefix) {
		return strings.TrimPrefix(tok, TestPrefix)
	}
	claims, err := Decode(tok)
	if err != nil {
		return ""
	}
	return claims.Username
}

// Decode parses the payload segment of a structured token.
func Decode(tok string) (Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return Claims{}, &DecodeError{Reason: "missing payload segment"}
	}
	raw, err := decodeSegment(parts[1])
	if err != nil {
		return Claims{}, &DecodeError{Reason: "payload is not base64url", Err: err}
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Claims{}, &DecodeError{Reason: "payload is not a JSON object", Err: err}
	}
	name, _ := payload["username"].(string)
	return Claims{Username: name}, nil
}

// decodeSegment accepts both URL and standard alphabets, padded or not.
func decodeSegment(seg string) ([]byte, error) {
	seg = strings.TrimRight(seg, "=")
	seg = strings.NewReplacer("+", "-", "/", "_").Replace(seg)
	return base64.RawURLEncoding.DecodeString(seg)
}
