// Package registration looks up a domain's registry record over WHOIS and
// extracts the registrar, registrant, creation date and name servers.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	whoisparser "github.com/likexian/whois-parser"

	"github.com/tbckr/domainintel/internal/apperr"
	"github.com/tbckr/domainintel/internal/output"
	"github.com/tbckr/domainintel/internal/services"
)

// Info is the registry record for one domain. Fields the registry did not
// report are nil or empty.
type Info struct {
	Registrar         *string    `json:"registrar,omitempty"`
	RegistrantName    *string    `json:"registrant_name,omitempty"`
	RegistrantCountry *string    `json:"registrant_country,omitempty"`
	CreationDate      *time.Time `json:"creation_date,omitempty"`
	NameServers       []string   `json:"name_servers,omitempty"`
}

var _ services.Result = (*Info)(nil)

// IsEmpty reports whether the registry returned nothing usable.
func (i *Info) IsEmpty() bool {
	return i.Registrar == nil && i.RegistrantName == nil && i.RegistrantCountry == nil &&
		i.CreationDate == nil && len(i.NameServers) == 0
}

// ParseFunc turns a raw WHOIS response into structured data.
type ParseFunc func(text string) (whoisparser.WhoisInfo, error)

// Service is the registration lookup.
type Service struct {
	client services.WhoisClient
	parse  ParseFunc
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithParser replaces whoisparser.Parse.
func WithParser(p ParseFunc) Option {
	return func(s *Service) { s.parse = p }
}

// NewService creates a registration lookup backed by client.
func NewService(client services.WhoisClient, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{client: client, parse: whoisparser.Parse, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source identifier.
func (s *Service) Name() string { return services.SourceRegistration }

type rawResult struct {
	text string
	err  error
}

// Lookup queries the registry for fqdn. The WHOIS client has no context
// support, so the query runs in its own goroutine and Lookup returns as soon
// as ctx is done.
func (s *Service) Lookup(ctx context.Context, fqdn string) (*Info, error) {
	ch := make(chan rawResult, 1)
	go func() {
		text, err := s.client.Whois(fqdn)
		ch <- rawResult{text: text, err: err}
	}()

	var raw rawResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: whois %s: %w", apperr.ErrLookupFailed, fqdn, ctx.Err())
	case raw = <-ch:
	}
	if raw.err != nil {
		return nil, fmt.Errorf("%w: whois %s: %w", apperr.ErrLookupFailed, fqdn, raw.err)
	}

	parsed, err := s.parse(raw.text)
	if err != nil {
		if errors.Is(err, whoisparser.ErrNotFoundDomain) {
			return nil, fmt.Errorf("%w: %s is not registered", apperr.ErrNotFound, fqdn)
		}
		return nil, fmt.Errorf("%w: parsing whois for %s: %w", apperr.ErrLookupFailed, fqdn, err)
	}

	info := fromParsed(parsed)
	if info.CreationDate == nil && parsed.Domain != nil && parsed.Domain.CreatedDate != "" {
		s.logger.Debug("unrecognised creation date", "domain", fqdn, "value", parsed.Domain.CreatedDate)
	}
	return info, nil
}

func fromParsed(w whoisparser.WhoisInfo) *Info {
	info := &Info{}
	if w.Registrar != nil {
		info.Registrar = nonEmpty(w.Registrar.Name)
	}
	if w.Registrant != nil {
		info.RegistrantName = nonEmpty(w.Registrant.Name)
		if info.RegistrantName == nil {
			info.RegistrantName = nonEmpty(w.Registrant.Organization)
		}
		info.RegistrantCountry = nonEmpty(w.Registrant.Country)
	}
	if w.Domain != nil {
		for _, ns := range w.Domain.NameServers {
			ns = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(ns), "."))
			if ns != "" {
				info.NameServers = append(info.NameServers, ns)
			}
		}
		info.NameServers = output.StripANSIAll(info.NameServers)
		if w.Domain.CreatedDateInTime != nil && !w.Domain.CreatedDateInTime.IsZero() {
			t := w.Domain.CreatedDateInTime.UTC()
			info.CreationDate = &t
		} else if t, ok := ParseDate(w.Domain.CreatedDate); ok {
			info.CreationDate = &t
		}
	}
	return info
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(output.StripANSI(s))
	if s == "" {
		return nil
	}
	return &s
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"02-Jan-2006",
	"02.01.2006",
	"January 2 2006",
	"Mon Jan 2 15:04:05 MST 2006",
}

// ParseDate parses a registry creation date the WHOIS parser left as text.
// Registries that report several
// dates separate them with commas; the first one is used.
func ParseDate(s string) (time.Time, bool) {
	s, _, _ = strings.Cut(s, ",")
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
