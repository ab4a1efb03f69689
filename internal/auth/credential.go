// Package auth holds the admin credential used for backend admin calls.
//
// The backend authenticates each admin request on its own by checking the
// plaintext admin password; there is no session token. Callers only ever see
// a Credential, so replacing the password with a token later means adding a
// new Credential type rather than changing call sites.
package auth

import "sync"

// Credential authenticates a single admin request.
type Credential interface {
	// Secret is the value the backend expects in the password field.
	Secret() string
}

// Password is the plaintext admin password.
type Password string

// Secret implements Credential.
func (p Password) Secret() string { return string(p) }

// String keeps the password out of logs and %v output.
func (p Password) String() string { return "[redacted]" }

// Holder stores the credential confirmed by the last successful login.
type Holder struct {
	mu   sync.RWMutex
	cred Credential
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the held credential.
func (h *Holder) Set(c Credential) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cred = c
}

// Clear forgets the held credential.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cred = nil
}

// Current returns the held credential, if any.
func (h *Holder) Current() (Credential, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cred, h.cred != nil
}
