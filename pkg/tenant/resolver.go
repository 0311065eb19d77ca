package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Resolver extracts a tenant identifier from an HTTP request.
type Resolver interface {
	// Resolve extracts the tenant identifier from the request.
	// Returns empty string if no tenant identifier is found and an error
	// only when extraction itself fails (e.g. a malformed token).
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver extracts the tenant identifier from an HTTP header.
type HeaderResolver struct {
	// HeaderName is the name of the header to read.
	HeaderName string
}

// NewHeaderResolver creates a header resolver, defaulting to "X-Tenant-ID".
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return req.Header.Get(r.HeaderName), nil
}

// SubdomainResolver extracts the tenant identifier from the request host,
// e.g. "acme" from "acme.rosterly.app".
type SubdomainResolver struct {
	// Suffix is the base domain to strip, including the leading dot
	// (e.g. ".rosterly.app").
	Suffix string
}

// NewSubdomainResolver creates a new subdomain resolver.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := req.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	if r.Suffix != "" {
		if !strings.HasSuffix(host, r.Suffix) || len(host) <= len(r.Suffix) {
			return "", nil
		}
		host = host[:len(host)-len(r.Suffix)]
	}

	parts := strings.Split(host, ".")
	if r.Suffix == "" && len(parts) < 3 {
		// Bare domain.tld without a configured suffix has no subdomain.
		return "", nil
	}

	sub := parts[0]
	if sub == "" || sub == "www" {
		return "", nil
	}
	return sub, nil
}

// CompositeResolver tries multiple resolvers in order until one yields an
// identifier.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a new composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error

	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
	}

	return "", nil
}
