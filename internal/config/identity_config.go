package config

type IdentityConfig interface {
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCRedirectURL() string
}

type Identity struct {
	file *FileValues
}

var _ IdentityConfig = Identity{}

// GetOIDCIssuer is empty when identity-provider sign-in is disabled.
func (i Identity) GetOIDCIssuer() string {
	return lookup("OIDC_ISSUER", i.file.Identity.Issuer, "")
}

func (i Identity) GetOIDCClientID() string {
	return lookup("OIDC_CLIENT_ID", i.file.Identity.ClientID, "")
}

func (i Identity) GetOIDCClientSecret() string {
	return lookup("OIDC_CLIENT_SECRET", i.file.Identity.ClientSecret, "")
}

func (i Identity) GetOIDCRedirectURL() string {
	return lookup("OIDC_REDIRECT_URL", i.file.Identity.RedirectURL, "http://localhost:3000/auth/callback")
}
