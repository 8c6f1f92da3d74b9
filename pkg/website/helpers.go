package website

import (
	"net/http"
	"strings"
)

// NormalizeHost strips the port and lower-cases host. IPv6 literals keep
// their brackets.
//
//	"Example.COM:8080" -> "example.com"
//	"[::1]:8080"       -> "[::1]"
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
		if strings.Count(host, ":") == 1 || strings.HasPrefix(host, "[") {
			host = host[:idx]
		}
	}
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// Domain returns the normalized domain of the request.
func Domain(r *http.Request) string {
	return NormalizeHost(r.Host)
}

// Subdomain returns the part of the request host before baseDomain, or ""
// when the host is baseDomain itself or outside it.
//
//	Subdomain(req, "example.com") // "shop.example.com" -> "shop"
func Subdomain(r *http.Request, baseDomain string) string {
	host := Domain(r)
	base := NormalizeHost(baseDomain)
	if host == base {
		return ""
	}
	sub, ok := strings.CutSuffix(host, "."+base)
	if !ok {
		return ""
	}
	return sub
}
