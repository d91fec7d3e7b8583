// Package netident resolves a host to an IP address and annotates it with
// ASN, organization and geolocation from an IP-intelligence API, falling
// back to local GeoLite2 databases when configured.
package netident

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"

	"github.com/imroc/req/v3"

	"github.com/tbckr/domainintel/internal/apperr"
	"github.com/tbckr/domainintel/internal/domain"
	"github.com/tbckr/domainintel/internal/output"
	"github.com/tbckr/domainintel/internal/services"
)

// DefaultBaseURL is the ipinfo.io API root.
const DefaultBaseURL = "https://ipinfo.io"

// ipinfoResponse is the subset of the ipinfo.io JSON body that is parsed.
type ipinfoResponse struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
}

// Service is the network identity resolver.
type Service struct {
	resolver services.DNSResolverInterface
	client   *req.Client
	baseURL  string
	token    string
	city     services.CityReader
	asn      services.ASNReader
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithToken sets the API token sent as the token query parameter.
func WithToken(token string) Option {
	return func(s *Service) { s.token = token }
}

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = strings.TrimSuffix(u, "/") }
}

// WithGeoIP enables local GeoLite2 lookups. Either reader may be nil.
func WithGeoIP(city services.CityReader, asn services.ASNReader) Option {
	return func(s *Service) {
		s.city = city
		s.asn = asn
	}
}

// NewService creates a network identity resolver.
func NewService(resolver services.DNSResolverInterface, client *req.Client, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{resolver: resolver, client: client, baseURL: DefaultBaseURL, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source identifier.
func (s *Service) Name() string { return services.SourceNetwork }

// Resolve returns the address for host annotated with network intelligence.
//
// A non-nil known address skips resolution, as does a host that is already
// a literal IP. Otherwise the first IPv4 address of host is used. When no
// address can be obtained Resolve returns nil and an error. When the address
// is known but the intelligence query fails, Resolve returns the address
// together with the error.
func (s *Service) Resolve(ctx context.Context, host string, known *domain.NetworkAddress) (*domain.NetworkAddress, error) {
	addr, err := s.address(ctx, host, known)
	if err != nil {
		return nil, err
	}

	intelErr := s.annotate(ctx, addr)
	s.annotateGeoIP(addr)
	if intelErr != nil {
		return addr, intelErr
	}
	return addr, nil
}

func (s *Service) address(ctx context.Context, host string, known *domain.NetworkAddress) (*domain.NetworkAddress, error) {
	if known != nil {
		if !known.IP.IsValid() {
			return nil, fmt.Errorf("%w: supplied address is not a valid IP", apperr.ErrInvalidInput)
		}
		cp := *known
		return &cp, nil
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return &domain.NetworkAddress{IP: ip}, nil
	}

	addrs, err := s.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %q: %w", apperr.ErrLookupFailed, host, err)
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			ip, _ := netip.AddrFromSlice(v4)
			return &domain.NetworkAddress{IP: ip}, nil
		}
	}
	return nil, fmt.Errorf("%w: no IPv4 address for %q", apperr.ErrNotFound, host)
}

// annotate queries the IP-intelligence API and fills addr in place.
func (s *Service) annotate(ctx context.Context, addr *domain.NetworkAddress) error {
	ip := addr.IP.String()
	var info ipinfoResponse

	r := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("ip", ip).
		SetSuccessResult(&info)
	if s.token != "" {
		r.SetQueryParam("token", s.token)
	}
	resp, err := r.Get(s.baseURL + "/{ip}")
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: ipinfo request error for %s: %w", apperr.ErrRequestFailed, ip, err)
	}
	if !resp.IsSuccessState() {
		body := resp.String()
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		return fmt.Errorf("%w: ipinfo returned HTTP %d for %s: %q", apperr.ErrRequestFailed, resp.StatusCode, ip, body)
	}

	addr.Details = resp.Bytes()
	addr.Org = output.StripANSI(info.Org)
	addr.ASN = ParseASN(addr.Org)
	addr.Hostname = output.StripANSI(info.Hostname)
	addr.City = output.StripANSI(info.City)
	addr.Region = output.StripANSI(info.Region)
	addr.Country = output.StripANSI(info.Country)
	addr.Location = output.StripANSI(info.Loc)

	if addr.ASN == "" {
		s.logger.Debug("ipinfo response has no org", "ip", ip)
	}
	return nil
}

// annotateGeoIP fills ASN and location fields the API left empty.
func (s *Service) annotateGeoIP(addr *domain.NetworkAddress) {
	ip := net.IP(addr.IP.AsSlice())

	if s.asn != nil && addr.ASN == "" {
		rec, err := s.asn.ASN(ip)
		switch {
		case err != nil:
			s.logger.Debug("GeoIP ASN lookup failed", "ip", addr.IP, "error", err)
		case rec.AutonomousSystemNumber != 0:
			addr.ASN = fmt.Sprintf("AS%d", rec.AutonomousSystemNumber)
			if addr.Org == "" {
				addr.Org = strings.TrimSpace(addr.ASN + " " + rec.AutonomousSystemOrganization)
			}
		}
	}

	if s.city != nil && addr.Country == "" {
		rec, err := s.city.City(ip)
		if err != nil {
			s.logger.Debug("GeoIP city lookup failed", "ip", addr.IP, "error", err)
			return
		}
		addr.Country = rec.Country.IsoCode
		addr.City = rec.City.Names["en"]
		if len(rec.Subdivisions) > 0 {
			addr.Region = rec.Subdivisions[0].Names["en"]
		}
		if rec.Location.Latitude != 0 || rec.Location.Longitude != 0 {
			addr.Location = fmt.Sprintf("%.4f,%.4f", rec.Location.Latitude, rec.Location.Longitude)
		}
	}
}

// ParseASN returns the first whitespace-delimited token of an ipinfo org
// value, e.g. "AS15169 Google LLC" yields "AS15169".
func ParseASN(org string) string {
	fields := strings.Fields(org)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
