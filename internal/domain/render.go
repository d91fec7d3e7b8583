package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tbckr/domainintel/internal/detect"
	"github.com/tbckr/domainintel/internal/output"
	"github.com/tbckr/domainintel/internal/store"
)

type jsonRecords struct {
	NS   []string `json:"ns"`
	A    []string `json:"a"`
	AAAA []string `json:"aaaa"`
	TXT  []string `json:"txt"`
	MX   []string `json:"mx"`
}

type jsonDomain struct {
	FQDN              string             `json:"fqdn"`
	Subdomain         string             `json:"subdomain"`
	ServerIP          *NetworkAddress    `json:"server-ip"`
	ASN               *string            `json:"asn"`
	Registrar         *string            `json:"registrar"`
	RegistrantName    *string            `json:"registrant-name"`
	RegistrantCountry *string            `json:"registrant-country"`
	CreationDate      string             `json:"creation-date"`
	ThreatAssessment  int                `json:"threat-assessment"`
	Records           jsonRecords        `json:"records"`
	Providers         []detect.Detection `json:"providers,omitempty"`
	Failures          []string           `json:"failures,omitempty"`
}

// MarshalJSON renders the domain with absent values as null and record
// lists as arrays.
func (d *Domain) MarshalJSON() ([]byte, error) {
	out := jsonDomain{
		FQDN:              d.FQDN,
		Subdomain:         d.Subdomain,
		ServerIP:          d.ServerAddress,
		ASN:               d.ASN,
		Registrar:         d.Registrar,
		RegistrantName:    d.RegistrantName,
		RegistrantCountry: d.RegistrantCountry,
		CreationDate:      d.CreationDate.Format(store.DateLayout),
		ThreatAssessment:  d.ThreatAssessment,
		Records: jsonRecords{
			NS:   d.NSRecords,
			A:    d.ARecords,
			AAAA: d.AAAARecords,
			TXT:  d.TXTRecords,
			MX:   d.MXRecords,
		},
		Providers: d.Providers,
	}
	for _, f := range d.Failures {
		out.Failures = append(out.Failures, f.Error())
	}
	return json.Marshal(out)
}

// IsEmpty reports whether no lookup contributed any data.
func (d *Domain) IsEmpty() bool {
	return d.ServerAddress == nil && d.Registrar == nil && d.RegistrantName == nil &&
		d.RegistrantCountry == nil && !d.HasCreationDate() && d.RecordCount() == 0
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// WriteTable renders a field/value summary followed by the DNS records grouped by type.
func (d *Domain) WriteTable(w io.Writer) error {
	created := "unknown"
	if d.HasCreationDate() {
		created = d.CreationDate.Format(store.DateLayout)
	}
	summary := [][]string{
		{"Domain", d.Host()},
		{"Registrable", d.FQDN},
		{"Registrar", orNone(deref(d.Registrar))},
		{"Registrant", orNone(deref(d.RegistrantName))},
		{"Country", orNone(deref(d.RegistrantCountry))},
		{"Created", created},
		{"Server IP", orNone(d.ServerAddress.String())},
		{"ASN", orNone(deref(d.ASN))},
	}
	if a := d.ServerAddress; a != nil && a.Org != "" {
		summary = append(summary, []string{"Org", a.Org})
	}
	if a := d.ServerAddress; a != nil && a.Country != "" {
		summary = append(summary, []string{"Location", strings.Trim(strings.Join([]string{a.City, a.Region, a.Country}, ", "), ", ")})
	}
	summary = append(summary, []string{"Threat", strconv.Itoa(d.ThreatAssessment)})

	if err := output.RenderTable(output.NewWrappingTable(w, 20, 20), []string{"Field", "Value"}, summary); err != nil {
		return err
	}
	if d.RecordCount() > 0 {
		records := make([][]string, 0, d.RecordCount())
		for _, r := range d.RecordRows(time.Time{}) {
			records = append(records, []string{string(r.Type), r.Value})
		}
		if err := output.RenderTable(output.NewGroupedWrappingTable(w, 20, 20), []string{"Type", "Value"}, records); err != nil {
			return err
		}
	}
	if len(d.Providers) == 0 {
		return nil
	}
	providers := make([][]string, 0, len(d.Providers))
	for _, p := range d.Providers {
		providers = append(providers, []string{string(p.Type), p.Provider, p.Evidence})
	}
	return output.RenderTable(output.NewGroupedWrappingTable(w, 20, 40), []string{"Type", "Provider", "Evidence"}, providers)
}

// WritePlain renders one "key value" line per field and per record, e.g.
// "registrar Example Registrar" or "MX mail.example.com".
func (d *Domain) WritePlain(w io.Writer) error {
	lines := []struct{ k, v string }{
		{"domain", d.Host()},
		{"fqdn", d.FQDN},
		{"subdomain", d.Subdomain},
		{"server_ip", d.ServerAddress.String()},
		{"asn", deref(d.ASN)},
		{"registrar", deref(d.Registrar)},
		{"registrant_name", deref(d.RegistrantName)},
		{"registrant_country", deref(d.RegistrantCountry)},
	}
	if d.HasCreationDate() {
		lines = append(lines, struct{ k, v string }{"creation_date", d.CreationDate.Format(store.DateLayout)})
	}
	for _, l := range lines {
		if l.v == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", l.k, l.v); err != nil {
			return err
		}
	}
	for _, r := range d.RecordRows(time.Time{}) {
		if _, err := fmt.Fprintf(w, "%s %s\n", r.Type, r.Value); err != nil {
			return err
		}
	}
	for _, p := range d.Providers {
		if _, err := fmt.Fprintf(w, "provider %s %s\n", strings.ToLower(string(p.Type)), p.Provider); err != nil {
			return err
		}
	}
	return nil
}
