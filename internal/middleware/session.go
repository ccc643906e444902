package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// TokenCookieName carries the signed session token.
const TokenCookieName = "churchflow_token"

// CookieConfig controls the session cookie flags.
type CookieConfig struct {
	AllowCrossSiteDev bool
	IsProduction      bool
}

// SessionCookie returns the cookie holding token for ttl. SameSite=None is only used
// for cross-site development, which also requires Secure in production.
func SessionCookie(cfg CookieConfig, token string, ttl time.Duration) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if cfg.AllowCrossSiteDev {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return &fiber.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}

// ExpiredSessionCookie clears the session cookie.
func ExpiredSessionCookie(cfg CookieConfig) *fiber.Cookie {
	c := SessionCookie(cfg, "", 0)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}
