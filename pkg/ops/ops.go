package ops

import (
	"context"
	"net"
	"net/http"
	"time"
)

// HTTPOps abstracts outbound HTTP for testability. *http.Client satisfies it.
type HTTPOps interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResolverOps abstracts DNS resolution for testability. *net.Resolver satisfies it.
type ResolverOps interface {
	// LookupHost returns the addresses of host, IPv4 and IPv6 mixed.
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// NewHTTPOps returns the real HTTP client. A zero timeout keeps the
// net/http default of no client-side deadline.
func NewHTTPOps(timeout time.Duration) HTTPOps {
	return &http.Client{Timeout: timeout}
}

// NewResolverOps returns the system resolver.
func NewResolverOps() ResolverOps {
	return net.DefaultResolver
}

// HTTPFunc adapts a plain function to HTTPOps.
type HTTPFunc func(req *http.Request) (*http.Response, error)

func (f HTTPFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// ResolverFunc adapts a plain function to ResolverOps.
type ResolverFunc func(ctx context.Context, host string) ([]string, error)

func (f ResolverFunc) LookupHost(ctx context.Context, host string) ([]string, error) {
	return f(ctx, host)
}
