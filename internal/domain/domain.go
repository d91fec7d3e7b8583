// Package domain holds the enriched Domain entity and the rules for
// splitting a raw FQDN into its registrable domain and subdomain.
package domain

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
	"time"
	"unicode"

	"github.com/tbckr/domainintel/internal/apperr"
	"github.com/tbckr/domainintel/internal/detect"
)

// Unassessed is the threat assessment of a domain nobody has scored yet.
const Unassessed = -1

// UnknownCreationDate stands in for a creation date no registry reported.
// It keeps the field non-null so sorting and formatting never fail.
var UnknownCreationDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// NetworkAddress is a resolved IP plus whatever the IP-intelligence lookup
// returned for it.
type NetworkAddress struct {
	IP       netip.Addr `json:"ip"`
	ASN      string     `json:"asn,omitempty"`
	Org      string     `json:"org,omitempty"`
	Hostname string     `json:"hostname,omitempty"`
	City     string     `json:"city,omitempty"`
	Region   string     `json:"region,omitempty"`
	Country  string     `json:"country,omitempty"`
	Location string     `json:"loc,omitempty"`
	// Details is the raw IP-intelligence response body.
	Details json.RawMessage `json:"details,omitempty"`
}

// String returns the IP in its canonical form, or "" for a nil address.
func (a *NetworkAddress) String() string {
	if a == nil || !a.IP.IsValid() {
		return ""
	}
	return a.IP.String()
}

// LookupFailure records one collaborator that failed during enrichment.
type LookupFailure struct {
	Source string
	Err    error
}

func (f LookupFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

func (f LookupFailure) Unwrap() error { return f.Err }

// Domain is the enrichment record for one registrable domain. Optional
// fields are nil when the corresponding lookup produced nothing; record
// lists are never nil.
type Domain struct {
	FQDN      string
	Subdomain string

	ServerAddress *NetworkAddress
	ASN           *string

	Registrar         *string
	RegistrantName    *string
	RegistrantCountry *string
	CreationDate      time.Time

	NSRecords   []string
	MXRecords   []string
	TXTRecords  []string
	ARecords    []string
	AAAARecords []string

	ThreatAssessment int

	// Providers are the services inferred from the NS, MX and TXT records.
	Providers []detect.Detection

	// Failures lists the lookups that failed, in source order.
	Failures []LookupFailure
}

// Split decomposes raw into its registrable domain (the last two labels) and
// the remaining leading labels. Only trailing whitespace is removed; case,
// punycode and hostname syntax are left untouched.
func Split(raw string) (fqdn, subdomain string, err error) {
	trimmed := strings.TrimRightFunc(raw, unicode.IsSpace)
	if strings.Trim(trimmed, ".") == "" {
		return "", "", fmt.Errorf("%w: domain must contain at least one label: %q", apperr.ErrInvalidInput, raw)
	}

	labels := strings.Split(trimmed, ".")
	cut := max(len(labels)-2, 0)
	return strings.Join(labels[cut:], "."), strings.Join(labels[:cut], "."), nil
}

// New returns a Domain for raw with every field at its default: unassessed,
// unknown creation date, empty record lists and no optional data.
func New(raw string) (*Domain, error) {
	fqdn, sub, err := Split(raw)
	if err != nil {
		return nil, err
	}
	return &Domain{
		FQDN:             fqdn,
		Subdomain:        sub,
		CreationDate:     UnknownCreationDate,
		NSRecords:        []string{},
		MXRecords:        []string{},
		TXTRecords:       []string{},
		ARecords:         []string{},
		AAAARecords:      []string{},
		ThreatAssessment: Unassessed,
	}, nil
}

// Host returns the full hostname the domain was built from.
func (d *Domain) Host() string {
	if d.Subdomain == "" {
		return d.FQDN
	}
	return d.Subdomain + "." + d.FQDN
}

// TLD returns the last label of the registrable domain.
func (d *Domain) TLD() string {
	i := strings.LastIndexByte(d.FQDN, '.')
	return d.FQDN[i+1:]
}

// HasMX reports whether any MX record was found.
func (d *Domain) HasMX() bool { return len(d.MXRecords) > 0 }

// HasA reports whether any A record was found.
func (d *Domain) HasA() bool { return len(d.ARecords) > 0 }

// HasCreationDate reports whether a registry supplied the creation date.
func (d *Domain) HasCreationDate() bool { return !d.CreationDate.Equal(UnknownCreationDate) }

// RecordCount returns the number of DNS records across all types.
func (d *Domain) RecordCount() int {
	return len(d.NSRecords) + len(d.MXRecords) + len(d.TXTRecords) + len(d.ARecords) + len(d.AAAARecords)
}

// deref returns *s, or "" for nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
