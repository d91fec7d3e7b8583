// Package enrich assembles a domain.Domain from the network identity,
// registration and DNS record lookups.
package enrich

import (
	"context"
	"log/slog"
	"net/netip"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tbckr/domainintel/internal/detect"
	"github.com/tbckr/domainintel/internal/domain"
	"github.com/tbckr/domainintel/internal/services"
	"github.com/tbckr/domainintel/internal/services/dnsrecords"
	"github.com/tbckr/domainintel/internal/services/registration"
	"github.com/tbckr/domainintel/internal/validate"
)

// NetworkResolver resolves a host to an annotated address.
// *netident.Service satisfies this interface.
type NetworkResolver interface {
	Name() string
	Resolve(ctx context.Context, host string, known *domain.NetworkAddress) (*domain.NetworkAddress, error)
}

// RegistrationLookup queries the registry record of a registrable domain.
// *registration.Service satisfies this interface.
type RegistrationLookup interface {
	Name() string
	Lookup(ctx context.Context, fqdn string) (*registration.Info, error)
}

// RecordCollector gathers the DNS records of a name.
// *dnsrecords.Service satisfies this interface.
type RecordCollector interface {
	Name() string
	Collect(ctx context.Context, name string) *dnsrecords.Records
}

// Enricher runs the three lookups for one domain and merges their results.
type Enricher struct {
	network      NetworkResolver
	registration RegistrationLookup
	records      RecordCollector
	detector     *detect.Detector
	timeout      time.Duration
	logger       *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithTimeout bounds every individual lookup. Zero means no bound beyond
// the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) { e.timeout = d }
}

// WithDetector infers providers from the collected records.
func WithDetector(d *detect.Detector) Option {
	return func(e *Enricher) { e.detector = d }
}

// New creates an Enricher.
func New(network NetworkResolver, reg RegistrationLookup, records RecordCollector, logger *slog.Logger, opts ...Option) *Enricher {
	e := &Enricher{network: network, registration: reg, records: records, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich builds the Domain for raw. The only error Enrich returns is for
// input that has no label at all; lookup failures leave their fields at
// the defaults and are listed in Domain.Failures.
//
// All lookups use the registrable domain. known, when non-nil, replaces
// hostname resolution; an IP literal input is used as known.
func (e *Enricher) Enrich(ctx context.Context, raw string, known *domain.NetworkAddress) (*domain.Domain, error) {
	d, err := domain.New(raw)
	if err != nil {
		return nil, err
	}
	switch {
	case validate.IsIP(d.Host()):
		e.logger.Warn("input is an IP address, not a hostname, continuing", "domain", d.Host())
		if known == nil {
			known = &domain.NetworkAddress{IP: netip.MustParseAddr(d.Host())}
		}
	case !validate.IsDomain(d.Host()):
		e.logger.Warn("input is not a syntactically valid hostname, continuing", "domain", d.Host())
	}

	var (
		addr    *domain.NetworkAddress
		addrErr error
		reg     *registration.Info
		regErr  error
		records *dnsrecords.Records
	)

	// Address and ASN annotation happen together inside the resolver, so
	// the three lookups share no data and can run side by side.
	var g errgroup.Group
	g.Go(func() error {
		lctx, cancel := e.lookupContext(ctx)
		defer cancel()
		addr, addrErr = e.network.Resolve(lctx, d.FQDN, known)
		return nil
	})
	g.Go(func() error {
		lctx, cancel := e.lookupContext(ctx)
		defer cancel()
		reg, regErr = e.registration.Lookup(lctx, d.FQDN)
		return nil
	})
	g.Go(func() error {
		lctx, cancel := e.lookupContext(ctx)
		defer cancel()
		records = e.records.Collect(lctx, d.FQDN)
		return nil
	})
	_ = g.Wait()

	applyNetwork(d, addr)
	applyRegistration(d, reg)
	applyRecords(d, records, reg)
	if e.detector != nil {
		d.Providers = e.detector.Detect(d.NSRecords, d.MXRecords, d.TXTRecords)
	}

	e.fail(d, e.network.Name(), addrErr)
	e.fail(d, e.registration.Name(), regErr)
	if regErr == nil && reg != nil {
		e.noteEmpty(d, e.registration.Name(), reg)
	}
	if records != nil {
		if err := records.Err(); err != nil {
			e.fail(d, e.records.Name(), err)
		} else {
			e.noteEmpty(d, e.records.Name(), records)
		}
	}

	e.logger.Debug("enrichment complete",
		"domain", d.FQDN,
		"records", d.RecordCount(),
		"failures", len(d.Failures),
	)
	return d, nil
}

func (e *Enricher) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Enricher) noteEmpty(d *domain.Domain, source string, r services.Result) {
	if r.IsEmpty() {
		e.logger.Debug("lookup returned no data", "source", source, "domain", d.FQDN)
	}
}

func (e *Enricher) fail(d *domain.Domain, source string, err error) {
	if err == nil {
		return
	}
	e.logger.Warn("lookup failed", "source", source, "domain", d.FQDN, "error", err)
	d.Failures = append(d.Failures, domain.LookupFailure{Source: source, Err: err})
}

func applyNetwork(d *domain.Domain, addr *domain.NetworkAddress) {
	if addr == nil {
		return
	}
	d.ServerAddress = addr
	d.ASN = domain.Optional(addr.ASN)
}

func applyRegistration(d *domain.Domain, reg *registration.Info) {
	if reg == nil {
		return
	}
	d.Registrar = reg.Registrar
	d.RegistrantName = reg.RegistrantName
	d.RegistrantCountry = reg.RegistrantCountry
	if reg.CreationDate != nil {
		d.CreationDate = *reg.CreationDate
	}
}

// applyRecords copies the DNS records. NS comes from DNS; the registry's
// name servers are used only when DNS returned none.
func applyRecords(d *domain.Domain, rec *dnsrecords.Records, reg *registration.Info) {
	if rec != nil {
		d.NSRecords = nonNil(rec.NS)
		d.ARecords = nonNil(rec.A)
		d.AAAARecords = nonNil(rec.AAAA)
		d.MXRecords = nonNil(rec.MX)
		d.TXTRecords = nonNil(rec.TXT)
	}
	if len(d.NSRecords) == 0 && reg != nil && len(reg.NameServers) > 0 {
		d.NSRecords = append([]string{}, reg.NameServers...)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
