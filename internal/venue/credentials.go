package venue

import "strings"

// Credentials is the per-venue API key pair, read once at startup and
// immutable afterwards. The env variable names ride along so diagnostics can
// tell the user exactly what to set.
type Credentials struct {
	APIKey    string
	APISecret string
	KeyEnv    string
	SecretEnv string
}

// MissingCredentialsError names the environment variables that must be set.
type MissingCredentialsError struct {
	Vars []string
}

func (e *MissingCredentialsError) Error() string {
	if len(e.Vars) == 2 {
		return "API key or secret is not set, please set " + e.Vars[0] + " and " + e.Vars[1]
	}
	return "API key is not set, please set " + e.Vars[0]
}

// RequireKey reports whether the market-data-tier credential is present.
// This is the only authorization check in the system; callers must abort
// before any network call on a non-nil return.
func (c Credentials) RequireKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &MissingCredentialsError{Vars: []string{c.KeyEnv}}
	}
	return nil
}

// RequireKeyAndSecret reports whether the trading-tier credential pair is
// present.
func (c Credentials) RequireKeyAndSecret() error {
	if strings.TrimSpace(c.APIKey) == "" || strings.TrimSpace(c.APISecret) == "" {
		return &MissingCredentialsError{Vars: []string{c.KeyEnv, c.SecretEnv}}
	}
	return nil
}
