package v1

type LicenseDeskClient struct {
	Transport *Transport
	Auth      *AuthEndpoint
	Check     *CheckEndpoint
	Licenses  *LicenseEndpoint
}

// NewLicenseDeskClient builds a client for baseURL. token may be empty for
// the public check/activate calls; Auth.Login stores the token it receives.
func NewLicenseDeskClient(baseURL string, token string) *LicenseDeskClient {
	t := NewTransport(baseURL, token)
	return &LicenseDeskClient{
		Transport: t,
		Auth:      &AuthEndpoint{transport: t},
		Check:     &CheckEndpoint{transport: t},
		Licenses:  &LicenseEndpoint{transport: t},
	}
}
