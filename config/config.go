// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package config

import (
	"net"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host           string
	Port           string
	PublicURL      string
	RateLimitRPS   float64
	RateLimitBurst int
	UpstreamProxy  string
}

func Load() *Config {
	host := os.Getenv("HOST")
	if host == "" {
		host = "127.0.0.1"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	rps := 20.0
	if val := os.Getenv("RATE_LIMIT_RPS"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			rps = parsed
		}
	}

	burst := 40
	if val := os.Getenv("RATE_LIMIT_BURST"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			burst = parsed
		}
	}

	return &Config{
		Host:           host,
		Port:           port,
		PublicURL:      os.Getenv("PUBLIC_URL"),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		UpstreamProxy:  os.Getenv("UPSTREAM_PROXY"),
	}
}

// Addr sunucunun dinleyeceği adres
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// PublicBaseURL yeniden yazılan playlist'lerdeki proxy linklerinin kökü.
// PUBLIC_URL yoksa http://HOST:PORT kullanılır.
func (c *Config) PublicBaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	return "http://" + c.Addr()
}
