// Package validation checks user-supplied values before they reach the API.
//
// ValidateBaseURL guards the configured API root against server-side request
// forgery targets: private ranges, loopback and cloud metadata endpoints.
// Private and loopback hosts can be allowed with STOREFRONT_ALLOW_PRIVATE
// (any value strconv.ParseBool accepts) or SetAllowPrivate(true), which is
// what local development against a store on localhost needs. Metadata
// endpoints stay blocked either way.
package validation

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var allowPrivate atomic.Bool

var privateNetworks []*net.IPNet

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("STOREFRONT_ALLOW_PRIVATE")))
	allowPrivate.Store(v)

	privateCIDRs := []string{
		"10.0.0.0/8",      // RFC1918
		"172.16.0.0/12",   // RFC1918
		"192.168.0.0/16",  // RFC1918
		"100.64.0.0/10",   // RFC6598
		"169.254.0.0/16",  // RFC3927
		"192.0.0.0/24",    // RFC6890
		"192.0.2.0/24",    // RFC5737
		"198.18.0.0/15",   // RFC2544
		"198.51.100.0/24", // RFC5737
		"203.0.113.0/24",  // RFC5737
		"240.0.0.0/4",     // RFC1112
		"fc00::/7",        // RFC4193
		"fe80::/10",       // RFC4291
		"ff00::/8",        // RFC4291
		"::1/128",
		"::/128",
		"2001:db8::/32", // RFC3849
	}
	privateNetworks = make([]*net.IPNet, 0, len(privateCIDRs))
	for _, cidr := range privateCIDRs {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			privateNetworks = append(privateNetworks, network)
		}
	}
}

// SetAllowPrivate enables or disables private and localhost base URLs.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and localhost URLs are allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// ValidateBaseURL checks that rawURL is an http(s) API root with a host, no
// query or fragment, and that it does not point at a forbidden address.
// Hostnames that fail to resolve are accepted.
func ValidateBaseURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsed.Scheme)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("base URL must not contain a query or fragment")
	}

	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if isLocalhost(hostname) && !allowPrivate.Load() {
		return fmt.Errorf("localhost URLs are not allowed (set STOREFRONT_ALLOW_PRIVATE=1 for local development)")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return validateIPAddress(ip)
	}
	if isLocalhost(hostname) {
		return nil
	}
	return validateDomainName(hostname)
}

func isLocalhost(hostname string) bool {
	lower := strings.ToLower(hostname)
	switch lower {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(lower, ".localhost")
}

func isCloudMetadata(hostname string) bool {
	lower := strings.ToLower(hostname)
	switch lower {
	case "169.254.169.254", "metadata.google.internal", "metadata", "instance-data", "fd00:ec2::254":
		return true
	}
	return strings.HasSuffix(lower, ".metadata.google.internal")
}

func validateIPAddress(ip net.IP) error {
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if allowPrivate.Load() {
		return nil
	}
	if ip.IsLoopback() {
		return fmt.Errorf("loopback IP addresses are not allowed")
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return fmt.Errorf("private IP addresses are not allowed")
		}
	}
	return nil
}

func validateDomainName(hostname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", hostname)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if err := validateIPAddress(ip); err != nil {
			return fmt.Errorf("domain %q resolves to forbidden IP %s: %w", hostname, ip.String(), err)
		}
	}
	return nil
}
