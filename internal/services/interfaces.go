// Package services defines the collaborator interfaces the lookup services
// depend on, so each can be exercised in tests without the network.
package services

import (
	"context"
	"net"

	"github.com/miekg/dns"
	"github.com/oschwald/geoip2-golang"
)

// DNSResolverInterface abstracts the forward address lookup of net.Resolver.
// *net.Resolver satisfies this interface directly.
type DNSResolverInterface interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// DNSExchanger sends a wire-format DNS query to server (host:port).
// *resolver.Exchanger satisfies this interface.
type DNSExchanger interface {
	Exchange(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error)
}

// WhoisClient performs a raw registry-protocol query.
// *whois.Client from github.com/likexian/whois satisfies this interface.
type WhoisClient interface {
	Whois(domain string, servers ...string) (string, error)
}

// CityReader looks up geolocation in a GeoLite2/GeoIP2 City database.
// *geoip2.Reader satisfies this interface.
type CityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// ASNReader looks up the autonomous system in a GeoLite2 ASN database.
// *geoip2.Reader satisfies this interface.
type ASNReader interface {
	ASN(ip net.IP) (*geoip2.ASN, error)
}
