package router

import (
	"fmt"
	"strings"

	"github.com/akeren/logfox/pkg/utils"
)

const (
	defaultPort         = "8080"
	defaultMaxBodyBytes = 1 << 20
	defaultHSTSMaxAge   = 31536000
)

// httpSettings is read from the environment once, when the router is built.
type httpSettings struct {
	port           string
	trustedProxies []string
	maxBodyBytes   int64
	corsOrigins    []string
	hstsEnabled    bool
	hstsValue      string
}

func loadHTTPSettings() httpSettings {
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	production := appEnv == "production" || appEnv == "prod"

	settings := httpSettings{
		port:           utils.GetEnvTrimmedOrDefault("APP_PORT", defaultPort),
		trustedProxies: parseTrustedProxies(utils.GetEnvTrimmed("TRUSTED_PROXIES")),
		maxBodyBytes:   int64(utils.GetEnvPositiveInt("MAX_REQUEST_BODY_BYTES", defaultMaxBodyBytes)),
		corsOrigins:    splitList(utils.GetEnvTrimmed("CORS_ALLOWED_ORIGIN")),
		hstsEnabled:    utils.GetEnvBool("HSTS_ENABLED", production),
	}

	settings.hstsValue = fmt.Sprintf("max-age=%d", utils.GetEnvPositiveInt("HSTS_MAX_AGE", defaultHSTSMaxAge))
	if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
		settings.hstsValue += "; includeSubDomains"
	}

	return settings
}

// parseTrustedProxies returns nil to make ClientIP use RemoteAddr. "*" trusts
// every upstream and is meant for local setups.
func parseTrustedProxies(raw string) []string {
	if raw == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s httpSettings) originAllowed(origin string) bool {
	for _, allowed := range s.corsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
