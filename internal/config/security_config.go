package config

import "time"

type SecurityConfig interface {
	GetRequirePKCE() bool
	GetJWTSigningSecret() string
	GetJWTSignerType() string
	GetEnableRateLimiting() bool
	GetAuthAttemptsPerSecond() float64
	GetAuthAttemptsBurst() int
	GetRateLimiterIdleTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetRequirePKCE() bool {
	return GetEnvBool("REQUIRE_PKCE", false)
}

// GetJWTSigningSecret returns the HMAC secret for the JWT enhancer. Empty disables the enhancer.
func (Security) GetJWTSigningSecret() string {
	return GetEnv("JWT_SIGNING_SECRET", "")
}

// GetJWTSignerType returns "HS256" or "RS256"
func (Security) GetJWTSignerType() string {
	return GetEnv("JWT_SIGNER_TYPE", "HS256")
}

func (Security) GetEnableRateLimiting() bool {
	return GetEnvBool("AUTH_RATE_LIMIT_ENABLED", true)
}

func (Security) GetAuthAttemptsPerSecond() float64 {
	return GetEnvFloat("AUTH_RATE_LIMIT_PER_SEC", 1)
}

func (Security) GetAuthAttemptsBurst() int {
	return GetEnvInt("AUTH_RATE_LIMIT_BURST", 5)
}

func (Security) GetRateLimiterIdleTimeout() time.Duration {
	return GetEnvDuration("AUTH_RATE_LIMIT_IDLE_TIMEOUT", time.Hour)
}
