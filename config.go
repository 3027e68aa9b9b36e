package pricegrid

import "time"

// DefaultCookieName is the session cookie written on login.
const DefaultCookieName = "pricegrid_session"

// SimpleConfig is a plain struct implementation of Config. Zero-value fields
// fall back to the package defaults, except the signing key which has no
// usable default.
type SimpleConfig struct {
	SigningKey           string
	CookieName           string
	FrontendURL          string
	SessionDuration      time.Duration
	VerificationDuration time.Duration
	ResetDuration        time.Duration
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c SimpleConfig) GetFrontendURL() string { return c.FrontendURL }

func (c SimpleConfig) GetSessionDuration() time.Duration {
	if c.SessionDuration == 0 {
		return SessionTTL
	}
	return c.SessionDuration
}

func (c SimpleConfig) GetVerificationDuration() time.Duration {
	if c.VerificationDuration == 0 {
		return VerificationTTL
	}
	return c.VerificationDuration
}

func (c SimpleConfig) GetResetDuration() time.Duration {
	if c.ResetDuration == 0 {
		return ResetTTL
	}
	return c.ResetDuration
}

var _ Config = SimpleConfig{}
