package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPConfig holds the proxies whose forwarding headers are trusted
type IPConfig struct {
	trusted []*net.IPNet
}

// NewIPConfig parses trusted proxy CIDR ranges. An empty list trusts no
// proxy, so forwarding headers are ignored.
func NewIPConfig(trustedProxies []string) (*IPConfig, error) {
	cfg := &IPConfig{trusted: make([]*net.IPNet, 0, len(trustedProxies))}
	for _, cidr := range trustedProxies {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		cfg.trusted = append(cfg.trusted, ipNet)
	}
	return cfg, nil
}

// ExtractClientIP returns the client address for r. X-Forwarded-For and
// X-Real-IP are honoured only when the direct peer is a trusted proxy, which
// keeps clients from spoofing their address to dodge rate limits.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteAddr(r)

	if config == nil || !config.isTrusted(remoteIP) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			ip = strings.TrimSpace(ip)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	return remoteIP
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func (c *IPConfig) isTrusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, ipNet := range c.trusted {
		if ipNet.Contains(parsed) {
			return true
		}
	}
	return false
}
