package aureum

import (
	"errors"
	"time"
)

// Config defines the tunable behavior of a [Client]. Config instances are
// intended to be configured during initialization and then treated as
// immutable.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig configures the HTTP chokepoint shared by the session layer and
// the domain services.
type APIConfig struct {
	// BaseURL is the explicit backend URL. When empty, resolution falls back
	// to the AUREUM_API_URL and API_URL environment variables, then the Extra
	// map, then a hardcoded development default. The resolved URL is always
	// normalized to end in exactly one "/api".
	BaseURL string
	// Extra carries build-time configuration values (key "apiUrl" is consulted
	// during base URL resolution).
	Extra map[string]string
	// Timeout bounds every request. Zero selects the 10s default. There is no
	// per-call override and no retry.
	Timeout time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures session lifecycle behavior.
type SessionConfig struct {
	// AutoValidateInterval is the period of the background token re-validation
	// that runs for the lifetime of the authenticated state. Zero selects the
	// 15m default; negative disables the timer.
	AutoValidateInterval time.Duration
	// LogoutNoticeDelay is how long a session-expired notice stays visible
	// before the coordinated logout fires. Zero selects the 2s default.
	LogoutNoticeDelay time.Duration
}

const (
	defaultRequestTimeout       = 10 * time.Second
	defaultAutoValidateInterval = 15 * time.Minute
	defaultLogoutNoticeDelay    = 2 * time.Second
)

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout: defaultRequestTimeout,
		},
		Session: SessionConfig{
			AutoValidateInterval: defaultAutoValidateInterval,
			LogoutNoticeDelay:    defaultLogoutNoticeDelay,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values the client cannot operate with.
func (c Config) Validate() error {
	if c.API.Timeout < 0 {
		return errors.New("API.Timeout must not be negative")
	}
	if c.Session.LogoutNoticeDelay < 0 {
		return errors.New("Session.LogoutNoticeDelay must not be negative")
	}
	return nil
}

// normalized fills zero values with defaults. Negative AutoValidateInterval is
// preserved: it means "timer disabled".
func (c Config) normalized() Config {
	out := cloneConfig(c)
	if out.API.Timeout == 0 {
		out.API.Timeout = defaultRequestTimeout
	}
	if out.Session.AutoValidateInterval == 0 {
		out.Session.AutoValidateInterval = defaultAutoValidateInterval
	}
	if out.Session.LogoutNoticeDelay == 0 {
		out.Session.LogoutNoticeDelay = defaultLogoutNoticeDelay
	}
	return out
}

func cloneConfig(c Config) Config {
	out := c
	if c.API.Extra != nil {
		out.API.Extra = make(map[string]string, len(c.API.Extra))
		for k, v := range c.API.Extra {
			out.API.Extra[k] = v
		}
	}
	return out
}
