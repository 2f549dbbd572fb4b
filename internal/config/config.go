// Package config declares the application-level configuration.
package config

import "time"

// Config holds the top-level application settings. Infra packages declare
// their own Config structs; this one covers identity, cookies, and flow
// lifetimes.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`

	// TokenSecret signs access tokens and verification codes.
	TokenSecret string `env:"AUTH_TOKEN_SECRET,required"`
	// CookieSecret signs the session cookie. Comma-separated values
	// rotate: the first signs, the rest still verify.
	CookieSecrets []string `env:"COOKIE_SECRETS,required"`

	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	VerificationTTL  time.Duration `env:"VERIFICATION_TTL" envDefault:"24h"`
	OTPTTL           time.Duration `env:"OTP_TTL" envDefault:"10m"`
	OTPSweepInterval time.Duration `env:"OTP_SWEEP_INTERVAL" envDefault:"5m"`

	// OTPRateCapacity and OTPRateRefill bound OTP sends per email.
	OTPRateCapacity int           `env:"OTP_RATE_CAPACITY" envDefault:"3"`
	OTPRateRefill   time.Duration `env:"OTP_RATE_REFILL" envDefault:"1m"`
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev" || c.AppEnv == "local"
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}
