package config

import (
	"path/filepath"
)

type CookieConfig interface {
	GetCookieFile() string
	GetSessionCookieName() string
	GetAdminCookieName() string
	GetCookieDomain() string
	GetCookieSecure() bool
	GetCookieSameSite() string
	GetCookieExpiryMinutes() int
	GetCookieRedisAddr() string
	GetCookieRedisPrefix() string
}

type Cookies struct {
	file *FileValues
}

var _ CookieConfig = Cookies{}

// GetCookieFile defaults to cookies.toml inside the data folder.
func (c Cookies) GetCookieFile() string {
	def := filepath.Join((EnvVars{file: c.file}).GetDataFolder(), "cookies.toml")
	return lookup("COOKIE_FILE", c.file.Cookies.File, def)
}

func (c Cookies) GetSessionCookieName() string {
	return lookup("SESSION_COOKIE_NAME", c.file.Cookies.SessionName, "bountipLoginUserTokens")
}

func (c Cookies) GetAdminCookieName() string {
	return lookup("ADMIN_COOKIE_NAME", c.file.Cookies.AdminName, "bountipAdminUserTokens")
}

func (c Cookies) GetCookieDomain() string {
	return lookup("COOKIE_DOMAIN", c.file.Cookies.Domain, "")
}

func (c Cookies) GetCookieSecure() bool {
	def := (EnvVars{file: c.file}).GetEnv() == EnvLive
	return lookupBool("COOKIE_SECURE", c.file.Cookies.Secure, def)
}

// GetCookieSameSite returns lax, strict or none.
func (c Cookies) GetCookieSameSite() string {
	switch v := lookup("COOKIE_SAME_SITE", c.file.Cookies.SameSite, "lax"); v {
	case "strict", "none":
		return v
	default:
		return "lax"
	}
}

// GetCookieExpiryMinutes is used when a token carries no exp claim.
func (c Cookies) GetCookieExpiryMinutes() int {
	return lookupInt("COOKIE_EXPIRY_MINUTES", c.file.Cookies.ExpiryMinutes, 7*24*60)
}

// GetCookieRedisAddr switches the cookie jar from the file to Redis when set.
func (c Cookies) GetCookieRedisAddr() string {
	return lookup("COOKIE_REDIS_ADDR", c.file.Cookies.RedisAddr, "")
}

func (c Cookies) GetCookieRedisPrefix() string {
	return lookup("COOKIE_REDIS_PREFIX", c.file.Cookies.RedisPrefix, "bountip:cookies:")
}
