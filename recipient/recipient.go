// Package recipient resolves human-readable payment handles
// ("alias@domain") to on-chain addresses. The domain advertises its
// resolver endpoint through an SRV record; the endpoint maps aliases to
// addresses over HTTPS.
package recipient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bsv-blockchain/go-sdk/script"
)

const (
	// SRVService is the SRV service label: _payto._tcp.{domain}.
	SRVService = "payto"

	// MaxResponseSize caps resolver endpoint response bodies.
	MaxResponseSize = 64 * 1024

	// defaultTimeout bounds each HTTP request to a resolver endpoint.
	defaultTimeout = 30 * time.Second
)

// Handle is a parsed payment handle.
type Handle struct {
	Alias  string
	Domain string
}

// String re-assembles the handle.
func (h Handle) String() string { return h.Alias + "@" + h.Domain }

// ParseHandle splits "alias@domain" and validates both parts.
func ParseHandle(raw string) (Handle, error) {
	alias, domain, ok := strings.Cut(raw, "@")
	if !ok || alias == "" || domain == "" {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}
	if strings.ContainsAny(alias, " /") || strings.ContainsAny(domain, " /@") {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}
	return Handle{Alias: alias, Domain: strings.ToLower(domain)}, nil
}

// DNSResolver looks up SRV records. Allows tests to mock DNS resolution.
type DNSResolver interface {
	LookupSRV(ctx context.Context, service, proto, name string) ([]*net.SRV, error)
}

// netResolver wraps the standard library resolver.
type netResolver struct{}

func (netResolver) LookupSRV(ctx context.Context, service, proto, name string) ([]*net.SRV, error) {
	_, addrs, err := net.DefaultResolver.LookupSRV(ctx, service, proto, name)
	return addrs, err
}

// addressResponse is the JSON returned by a resolver endpoint.
type addressResponse struct {
	Handle  string `json:"handle"`
	Address string `json:"address"`
}

// Resolver resolves payment handles to addresses.
type Resolver struct {
	dns    DNSResolver
	client *http.Client
}

// NewResolver creates a handle resolver. A nil dns falls back to the
// standard library resolver.
func NewResolver(dns DNSResolver) *Resolver {
	if dns == nil {
		dns = netResolver{}
	}
	return &Resolver{
		dns:    dns,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Resolve maps a payment handle to an on-chain address. It discovers the
// domain's resolver endpoint through an SRV lookup, falling back to
// {domain}:443 when no record exists, then queries the endpoint over
// HTTPS. The returned address is validated before use.
func (r *Resolver) Resolve(ctx context.Context, rawHandle string) (string, error) {
	handle, err := ParseHandle(rawHandle)
	if err != nil {
		return "", err
	}

	endpoints, err := r.endpoints(ctx, handle.Domain)
	if err != nil {
		return "", err
	}

	var lastErr error
	for _, ep := range endpoints {
		addr, err := r.query(ctx, ep, handle)
		if err != nil {
			lastErr = err
			continue
		}
		return addr, nil
	}
	return "", fmt.Errorf("%w: %s: %w", ErrResolutionFailed, handle, lastErr)
}

// endpoints returns candidate resolver hosts for a domain, SRV-discovered
// and ordered by priority then weight, or the well-known fallback.
func (r *Resolver) endpoints(ctx context.Context, domain string) ([]string, error) {
	addrs, err := r.dns.LookupSRV(ctx, SRVService, "tcp", domain)
	if err != nil || len(addrs) == 0 {
		// No SRV record is not fatal; the domain itself serves the API.
		return []string{domain + ":443"}, nil
	}

	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	endpoints := make([]string, len(addrs))
	for i, srv := range addrs {
		host := strings.TrimSuffix(srv.Target, ".")
		endpoints[i] = fmt.Sprintf("%s:%d", host, srv.Port)
	}
	return endpoints, nil
}

// query asks one resolver endpoint for the handle's address.
func (r *Resolver) query(ctx context.Context, endpoint string, handle Handle) (string, error) {
	// Escape the alias to keep it a single path segment.
	reqURL := fmt.Sprintf("https://%s/v1/address/%s@%s",
		endpoint, url.PathEscape(handle.Alias), url.PathEscape(handle.Domain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolutionFailed, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", ErrResolutionFailed, reqURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrHandleNotFound, handle)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: GET %s returned status %d", ErrResolutionFailed, reqURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ErrResolutionFailed, err)
	}

	var ar addressResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return "", fmt.Errorf("%w: parsing response: %w", ErrResolutionFailed, err)
	}
	if ar.Address == "" {
		return "", fmt.Errorf("%w: empty address in response", ErrResolutionFailed)
	}
	if _, err := script.NewAddressFromString(ar.Address); err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, ar.Address, err)
	}

	return ar.Address, nil
}
