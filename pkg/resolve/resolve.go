// Package resolve answers "what is the address of this host" questions with
// the system resolver.
package resolve

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/zhy0216/lookout/pkg/ops"
)

// Service resolves hostnames to printable sentences.
type Service struct {
	resolver ops.ResolverOps
	logger   zerolog.Logger
}

// NewService creates a Service on top of resolver.
func NewService(resolver ops.ResolverOps, logger zerolog.Logger) *Service {
	return &Service{resolver: resolver, logger: logger}
}

// Lookup resolves hostname. Failures are described in the returned text.
func (s *Service) Lookup(ctx context.Context, hostname string) string {
	addr, err := s.Address(ctx, hostname)
	if err != nil {
		s.logger.Warn().Err(err).Str("hostname", hostname).Msg("hostname resolution failed")
		return fmt.Sprintf("Error resolving hostname %s: %v", hostname, err)
	}
	return fmt.Sprintf("The IP address of %s is %s.", hostname, addr)
}

// Address returns one address for hostname, preferring IPv4.
func (s *Service) Address(ctx context.Context, hostname string) (string, error) {
	addrs, err := s.resolver.LookupHost(ctx, hostname)
	if err != nil {
		return "", err
	}
	return pickAddress(hostname, addrs)
}

func pickAddress(hostname string, addrs []string) (string, error) {
	var first string
	for _, a := range addrs {
		ip := net.ParseIP(a)
		if ip == nil {
			continue
		}
		if ip.To4() != nil {
			return ip.String(), nil
		}
		if first == "" {
			first = ip.String()
		}
	}
	if first == "" {
		return "", fmt.Errorf("no addresses found for %s", hostname)
	}
	return first, nil
}
