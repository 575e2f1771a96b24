package tools

import "context"

// HostnameLookup is satisfied by resolve.Service.
type HostnameLookup interface {
	Lookup(ctx context.Context, hostname string) string
}

// HostnameArgs are the decoded arguments of get_hostname_address.
type HostnameArgs struct {
	Hostname string `json:"hostname"`
}

// HostnameDescriptor describes the DNS lookup tool to the model.
func HostnameDescriptor() Descriptor {
	return Descriptor{
		ID:          ToolHostnameAddress,
		Description: "Resolve a fully-qualified hostname to its IP address using DNS",
		Parameters: []Parameter{
			{Name: "hostname", Type: "string", Description: "The fully-qualified domain name to resolve, e.g. www.example.com", Required: true},
		},
	}
}

// NewHostnameTool binds the hostname descriptor to a resolver service.
func NewHostnameTool(svc HostnameLookup) Entry {
	return Bind(HostnameDescriptor(), func(ctx context.Context, args HostnameArgs) string {
		return svc.Lookup(ctx, args.Hostname)
	})
}

// NewDefaultRegistry declares the shipped tools in the order the model sees them.
func NewDefaultRegistry(forecast ForecastLookup, hostname HostnameLookup) *Registry {
	return NewRegistry(
		NewForecastTool(forecast),
		NewHostnameTool(hostname),
	)
}
