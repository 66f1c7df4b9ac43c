// Package flows keeps identity-provider sign-in attempts between the redirect
// to the provider and the callback that completes them.
package flows

import "time"

// Flow is one pending sign-in, keyed by its state parameter.
type Flow struct {
	State        string
	CodeVerifier string // PKCE verifier sent with the code exchange
	Nonce        string // Must match the nonce claim of the returned ID token
	ReturnRoute  string // Where to go once signed in
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(flow *Flow) error
	Get(state string) (*Flow, error)
	Delete(state string) error
	// DeleteExpired removes flows created before cutoff.
	DeleteExpired(cutoff time.Time) error
}
