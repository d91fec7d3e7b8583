// Package dnsrecords collects the NS, A, AAAA, MX and TXT records of a name
// by querying a nameserver directly.
package dnsrecords

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"

	"github.com/tbckr/domainintel/internal/apperr"
	"github.com/tbckr/domainintel/internal/output"
	"github.com/tbckr/domainintel/internal/services"
)

// Failure is a record type whose query failed for a reason other than the
// name or type not existing.
type Failure struct {
	Type string
	Err  error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Type, f.Err) }

func (f Failure) Unwrap() error { return f.Err }

// Records holds the collected record values. Absent types are empty slices.
type Records struct {
	NS       []string  `json:"ns"`
	A        []string  `json:"a"`
	AAAA     []string  `json:"aaaa"`
	MX       []string  `json:"mx"`
	TXT      []string  `json:"txt"`
	Failures []Failure `json:"-"`
}

var _ services.Result = (*Records)(nil)

// IsEmpty reports whether no record of any type was found.
func (r *Records) IsEmpty() bool {
	return len(r.NS) == 0 && len(r.A) == 0 && len(r.AAAA) == 0 && len(r.MX) == 0 && len(r.TXT) == 0
}

// Err joins the recorded failures, or returns nil.
func (r *Records) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// queryTypes is the collection order; failures are reported in this order.
var queryTypes = []uint16{dns.TypeNS, dns.TypeA, dns.TypeAAAA, dns.TypeMX, dns.TypeTXT}

// Service is the DNS record collector.
type Service struct {
	exchanger services.DNSExchanger
	server    string
	logger    *slog.Logger
}

// NewService creates a collector sending queries to server (host:port).
func NewService(exchanger services.DNSExchanger, server string, logger *slog.Logger) *Service {
	return &Service{exchanger: exchanger, server: server, logger: logger}
}

// Name returns the source identifier.
func (s *Service) Name() string { return services.SourceDNS }

// Collect queries every record type concurrently. A type with no records is
// left empty; a type whose query fails is left empty and listed in
// Records.Failures. Collect never fails as a whole.
func (s *Service) Collect(ctx context.Context, name string) *Records {
	values := make([][]string, len(queryTypes))
	errs := make([]error, len(queryTypes))

	var g errgroup.Group
	for i, qtype := range queryTypes {
		g.Go(func() error {
			values[i], errs[i] = s.query(ctx, name, qtype)
			return nil
		})
	}
	_ = g.Wait()

	rec := &Records{}
	for i, qtype := range queryTypes {
		typeName := dns.TypeToString[qtype]
		switch {
		case errs[i] == nil:
		case errors.Is(errs[i], apperr.ErrNotFound):
			s.logger.Debug("no records", "name", name, "type", typeName)
		default:
			rec.Failures = append(rec.Failures, Failure{Type: typeName, Err: errs[i]})
		}
		v := values[i]
		if v == nil {
			v = []string{}
		}
		switch qtype {
		case dns.TypeNS:
			rec.NS = v
		case dns.TypeA:
			rec.A = v
		case dns.TypeAAAA:
			rec.AAAA = v
		case dns.TypeMX:
			rec.MX = v
		case dns.TypeTXT:
			rec.TXT = v
		}
	}
	return rec
}

func (s *Service) query(ctx context.Context, name string, qtype uint16) ([]string, error) {
	typeName := dns.TypeToString[qtype]

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true
	m.SetEdns0(4096, false)

	resp, err := s.exchanger.Exchange(ctx, m, s.server)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", apperr.ErrLookupFailed, typeName, name, err)
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, fmt.Errorf("%w: %s does not exist", apperr.ErrNotFound, name)
	default:
		return nil, fmt.Errorf("%w: %s %s: %s", apperr.ErrLookupFailed, typeName, name, dns.RcodeToString[resp.Rcode])
	}

	var out []string
	for _, rr := range resp.Answer {
		if v, ok := value(rr, qtype); ok {
			out = append(out, output.StripANSI(v))
		}
	}
	s.logger.Debug("DNS query", "name", name, "type", typeName, "answers", len(out))
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no %s records for %s", apperr.ErrNotFound, typeName, name)
	}
	return out, nil
}

// value extracts the presentation value of rr when it matches qtype. CNAME
// records that precede the final answer are skipped.
func value(rr dns.RR, qtype uint16) (string, bool) {
	if rr.Header().Rrtype != qtype {
		return "", false
	}
	switch r := rr.(type) {
	case *dns.NS:
		return strings.TrimSuffix(r.Ns, "."), true
	case *dns.A:
		return r.A.String(), true
	case *dns.AAAA:
		return r.AAAA.String(), true
	case *dns.MX:
		return strings.TrimSuffix(r.Mx, "."), true
	case *dns.TXT:
		return strings.Join(r.Txt, ""), true
	}
	return "", false
}
