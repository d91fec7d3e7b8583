package domain

import (
	"time"

	"github.com/tbckr/domainintel/internal/store"
)

// SummaryRow flattens d into the tracked-domains row, stamped with lookedUp.
func (d *Domain) SummaryRow(lookedUp time.Time) store.DomainRow {
	return store.DomainRow{
		ThreatAssessment:  d.ThreatAssessment,
		FQDN:              d.FQDN,
		TLD:               d.TLD(),
		ServerAddress:     d.ServerAddress.String(),
		Registrar:         deref(d.Registrar),
		ASN:               deref(d.ASN),
		HasMX:             d.HasMX(),
		HasA:              d.HasA(),
		RegistrantCountry: deref(d.RegistrantCountry),
		CreationDate:      d.CreationDate,
		DateOfLookup:      lookedUp,
	}
}

// RecordRows returns one observation per DNS record in the order NS, TXT,
// A, AAAA, MX, each stamped with observed.
func (d *Domain) RecordRows(observed time.Time) []store.RecordRow {
	rows := make([]store.RecordRow, 0, d.RecordCount())
	add := func(t store.RecordType, values []string) {
		for _, v := range values {
			rows = append(rows, store.RecordRow{FQDN: d.FQDN, Type: t, Value: v, DateObserved: observed})
		}
	}
	add(store.RecordNS, d.NSRecords)
	add(store.RecordTXT, d.TXTRecords)
	add(store.RecordA, d.ARecords)
	add(store.RecordAAAA, d.AAAARecords)
	add(store.RecordMX, d.MXRecords)
	return rows
}
