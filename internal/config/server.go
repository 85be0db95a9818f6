package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Server http server config struct
type Server struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// TrustedProxies may set X-Forwarded-For; empty trusts none and the
	// client IP is the socket peer.
	TrustedProxies  []string
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Host:            getStringOrDefault(v, "server.host", "0.0.0.0"),
		Port:            getIntOrDefault(v, "server.port", 5000),
		ReadTimeout:     getDurationOrDefault(v, "server.read_timeout", 15*time.Second),
		WriteTimeout:    getDurationOrDefault(v, "server.write_timeout", 15*time.Second),
		ShutdownTimeout: getDurationOrDefault(v, "server.shutdown_timeout", 10*time.Second),
		TrustedProxies:  v.GetStringSlice("server.trusted_proxies"),
	}
}

// RateLimit per-client request limit config struct
type RateLimit struct {
	Enabled bool
	Window  time.Duration
	Max     int
}

func getRateLimitConfig(v *viper.Viper) *RateLimit {
	return &RateLimit{
		Enabled: getBoolOrDefault(v, "ratelimit.enabled", true),
		Window:  getDurationOrDefault(v, "ratelimit.window", 15*time.Minute),
		Max:     getIntOrDefault(v, "ratelimit.max", 100),
	}
}

// CORS config struct
type CORS struct {
	AllowOrigins []string
}

func getCORSConfig(v *viper.Viper) *CORS {
	origins := v.GetStringSlice("cors.allow_origins")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return &CORS{AllowOrigins: origins}
}

// Views view accounting config struct
type Views struct {
	Timeout time.Duration
}

// Employer employer counter config struct
type Employer struct {
	Collection string
	Timeout    time.Duration
}

func getEmployerConfig(v *viper.Viper) *Employer {
	return &Employer{
		Collection: getStringOrDefault(v, "employer.collection", "users"),
		Timeout:    getDurationOrDefault(v, "employer.timeout", 3*time.Second),
	}
}
