// Package testutil provides shared test helpers for service unit tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"net"

	"github.com/miekg/dns"

	"github.com/tbckr/domainintel/internal/services"
)

// MockResolver implements services.DNSResolverInterface for testing.
type MockResolver struct {
	LookupIPAddrFn func(ctx context.Context, host string) ([]net.IPAddr, error)
}

var _ services.DNSResolverInterface = (*MockResolver)(nil)

// LookupIPAddr implements DNSResolverInterface.
func (m *MockResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if m.LookupIPAddrFn != nil {
		return m.LookupIPAddrFn(ctx, host)
	}
	return nil, nil
}

// MockExchanger implements services.DNSExchanger for testing.
// Answers maps a query type to the records returned for it; Errors maps a
// query type to a transport error. Types in neither map get NXDOMAIN.
type MockExchanger struct {
	Answers map[uint16][]dns.RR
	Errors  map[uint16]error
	// Rcodes overrides the response code for a query type.
	Rcodes map[uint16]int
}

var _ services.DNSExchanger = (*MockExchanger)(nil)

// Exchange implements DNSExchanger.
func (m *MockExchanger) Exchange(ctx context.Context, q *dns.Msg, _ string) (*dns.Msg, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qtype := q.Question[0].Qtype
	if err, ok := m.Errors[qtype]; ok {
		return nil, err
	}
	resp := new(dns.Msg)
	resp.SetReply(q)
	if rcode, ok := m.Rcodes[qtype]; ok {
		resp.Rcode = rcode
		return resp, nil
	}
	answers, ok := m.Answers[qtype]
	if !ok {
		resp.Rcode = dns.RcodeNameError
		return resp, nil
	}
	resp.Answer = answers
	return resp, nil
}

// RR parses a zone-file style record, panicking on malformed test input.
func RR(s string) dns.RR {
	rr, err := dns.NewRR(s)
	if err != nil {
		panic(err)
	}
	return rr
}

// MockWhois implements services.WhoisClient for testing.
type MockWhois struct {
	WhoisFn func(domain string) (string, error)
	// Queried records every domain passed to Whois.
	Queried []string
}

var _ services.WhoisClient = (*MockWhois)(nil)

// Whois implements WhoisClient.
func (m *MockWhois) Whois(domain string, _ ...string) (string, error) {
	m.Queried = append(m.Queried, domain)
	if m.WhoisFn != nil {
		return m.WhoisFn(domain)
	}
	return "", nil
}

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
