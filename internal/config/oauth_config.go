package config

import "time"

type OAuthConfig interface {
	GetAuthCodeTimeout() time.Duration
	GetCodeGenerationLength() int
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetAuthCodeTimeout() time.Duration {
	return GetEnvDuration("AUTH_CODE_TIMEOUT", 5*time.Minute)
}

func (OAuth) GetCodeGenerationLength() int {
	return GetEnvInt("AUTH_CODE_LENGTH", 32)
}

func (OAuth) GetDefaultAccessTokenExpiry() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_VALIDITY", 10*time.Minute)
}

func (OAuth) GetDefaultRefreshTokenExpiry() time.Duration {
	return GetEnvDuration("REFRESH_TOKEN_VALIDITY", 2*time.Hour)
}
