package tokens

// WirePair mirrors the identity boundary's token payload. The boundary has
// shipped both camelCase and snake_case field names over time; both spellings
// are accepted, with camelCase winning when a body carries both.
type WirePair struct {
	AccessToken     string `json:"accessToken,omitempty"`
	AccessTokenAlt  string `json:"access_token,omitempty"`
	RefreshToken    string `json:"refreshToken,omitempty"`
	RefreshTokenAlt string `json:"refresh_token,omitempty"`
}

// Pair collapses the wire spellings into a CredentialPair. The boolean is
// false when either token is missing under both spellings; such a response
// must never be persisted.
func (w WirePair) Pair() (CredentialPair, bool) {
	access := w.AccessToken
	if access == "" {
		access = w.AccessTokenAlt
	}
	refresh := w.RefreshToken
	if refresh == "" {
		refresh = w.RefreshTokenAlt
	}
	if access == "" || refresh == "" {
		return CredentialPair{}, false
	}
	return CredentialPair{AccessToken: access, RefreshToken: refresh}, true
}
