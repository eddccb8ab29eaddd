package service

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"unicode"

	"stressbox/internal/domain"
)

// Unknown is used for a client address or user agent that cannot be determined
const Unknown = "unknown"

// ipHeaders are consulted in order before falling back to RemoteAddr
var ipHeaders = []string{
	"CF-Connecting-IP", // Cloudflare
	"X-Forwarded-For",  // Standard proxy header
	"X-Real-IP",        // Nginx proxy
	"X-Client-IP",      // Apache proxy
}

// Country codes Cloudflare uses when it has no real country
var placeholderCountries = map[string]bool{
	"XX": true, // unknown
	"T1": true, // Tor exit node
}

// maxGeoValueLength bounds a single geo header value
const maxGeoValueLength = 64

// ClientIP returns the address the visitor connected from. Header values
// that do not parse as an IP address are skipped.
func ClientIP(r *http.Request) string {
	for _, header := range ipHeaders {
		value := strings.TrimSpace(r.Header.Get(header))
		// X-Forwarded-For can contain multiple IPs, take the first one
		if header == "X-Forwarded-For" {
			value = firstIP(value)
		}
		if ip, ok := parseIP(value); ok {
			return ip
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	if ip, ok := parseIP(host); ok {
		return ip
	}
	return Unknown
}

// parseIP returns value in canonical form when it is an IP address
func parseIP(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// firstIP extracts the first IP from a comma-separated list
func firstIP(ips string) string {
	first, _, _ := strings.Cut(ips, ",")
	return strings.TrimSpace(first)
}

// ClientUserAgent returns the User-Agent header or "unknown"
func ClientUserAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return Unknown
}

// GeoFromHeaders reads the visitor location headers added by Cloudflare.
// It returns nil when none are present.
func GeoFromHeaders(h http.Header) *domain.GeoDetails {
	country := geoValue(h, "CF-IPCountry")
	if placeholderCountries[strings.ToUpper(country)] {
		country = ""
	}

	geo := &domain.GeoDetails{
		Country:   country,
		City:      geoValue(h, "CF-IPCity"),
		Region:    geoValue(h, "CF-Region"),
		Continent: geoValue(h, "CF-IPContinent"),
		Timezone:  geoValue(h, "CF-Timezone"),
		Latitude:  geoValue(h, "CF-IPLatitude"),
		Longitude: geoValue(h, "CF-IPLongitude"),
	}

	if *geo == (domain.GeoDetails{}) {
		return nil
	}
	return geo
}

// geoValue returns the trimmed header, or "" when it is too long or holds
// markup or control characters. Place names never need them.
func geoValue(h http.Header, key string) string {
	value := strings.TrimSpace(h.Get(key))
	if len(value) > maxGeoValueLength {
		return ""
	}
	for _, r := range value {
		if unicode.IsControl(r) || strings.ContainsRune("<>\"'`&", r) {
			return ""
		}
	}
	return value
}

// CurrentVisitorInfo describes the requesting client from headers alone
func CurrentVisitorInfo(r *http.Request) *domain.CurrentVisitor {
	ip := ClientIP(r)
	geo := GeoFromHeaders(r.Header)

	return &domain.CurrentVisitor{
		IP:          ip,
		Fingerprint: ComputeFingerprint(ip, ClientUserAgent(r)),
		Location:    geo.Label(),
		GeoDetails:  geo,
	}
}
