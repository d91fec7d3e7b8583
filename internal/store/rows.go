package store

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk format of every date column.
const DateLayout = "2006-01-02"

// legacyDateTimeLayout is accepted when reading files whose date columns
// were written with a time component.
const legacyDateTimeLayout = "2006-01-02 15:04:05"

// RecordType is the DNS record type of a RecordRow.
type RecordType string

// Record types written to the record log.
const (
	RecordNS   RecordType = "NS"
	RecordA    RecordType = "A"
	RecordAAAA RecordType = "AAAA"
	RecordMX   RecordType = "MX"
	RecordTXT  RecordType = "TXT"
)

// DomainRow is one summary row of the tracked-domains sheet.
// Empty strings are written as empty cells.
type DomainRow struct {
	ThreatAssessment  int
	FQDN              string
	TLD               string
	ServerAddress     string
	Registrar         string
	ASN               string
	HasMX             bool
	HasA              bool
	RegistrantCountry string
	CreationDate      time.Time
	DateOfLookup      time.Time
}

// RecordRow is one observation in the domain-records sheet.
type RecordRow struct {
	FQDN         string
	Type         RecordType
	Value        string
	DateObserved time.Time
}

type kind int

const (
	kindString kind = iota
	kindInt
	kindBool
)

type column struct {
	name string
	kind kind
}

var domainColumns = []column{
	{"threat_assessment", kindInt},
	{"fqdn", kindString},
	{"tld", kindString},
	{"server_ip", kindString},
	{"registrar", kindString},
	{"asn", kindString},
	{"has_mx", kindBool},
	{"has_a", kindBool},
	{"registrant_country", kindString},
	{"creation_date", kindString},
	{"date_of_lookup", kindString},
}

// domainKey is the index of the dedup column in domainColumns.
const domainKey = 1

var recordColumns = []column{
	{"fqdn", kindString},
	{"record_type", kindString},
	{"value", kindString},
	{"date_observed", kindString},
}

func (r DomainRow) cells() []string {
	return []string{
		strconv.Itoa(r.ThreatAssessment),
		r.FQDN,
		r.TLD,
		r.ServerAddress,
		r.Registrar,
		r.ASN,
		strconv.FormatBool(r.HasMX),
		strconv.FormatBool(r.HasA),
		r.RegistrantCountry,
		formatDate(r.CreationDate),
		formatDate(r.DateOfLookup),
	}
}

func domainRowFromCells(c []string) DomainRow {
	threat, err := strconv.Atoi(c[0])
	if err != nil {
		threat = -1
	}
	hasMX, _ := strconv.ParseBool(c[6])
	hasA, _ := strconv.ParseBool(c[7])
	return DomainRow{
		ThreatAssessment:  threat,
		FQDN:              c[1],
		TLD:               c[2],
		ServerAddress:     c[3],
		Registrar:         c[4],
		ASN:               c[5],
		HasMX:             hasMX,
		HasA:              hasA,
		RegistrantCountry: c[8],
		CreationDate:      parseDate(c[9]),
		DateOfLookup:      parseDate(c[10]),
	}
}

func (r RecordRow) cells() []string {
	return []string{r.FQDN, string(r.Type), r.Value, formatDate(r.DateObserved)}
}

func recordRowFromCells(c []string) RecordRow {
	return RecordRow{
		FQDN:         c[0],
		Type:         RecordType(strings.ToUpper(c[1])),
		Value:        c[2],
		DateObserved: parseDate(c[3]),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// parseDate returns the zero time for empty or unrecognised values.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, legacyDateTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
