package sessions

// TokenPair is the credential persisted in the session cookie as
// {"accessToken": "...", "refreshToken": "..."}. Its absence means the user is
// not signed in.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`  // Bearer token sent on every API call
	RefreshToken string `json:"refreshToken"` // Kept for the server; the console never refreshes on its own
}

// Valid reports whether the pair carries an access token.
func (p TokenPair) Valid() bool {
	return p.AccessToken != ""
}
