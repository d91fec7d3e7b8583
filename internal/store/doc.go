// Package store persists enrichment results to spreadsheet files.
//
// DomainStore keeps one summary row per registrable domain (last write
// wins on the fqdn column). RecordStore is an append-only log of observed
// DNS records. Both re-read and fully rewrite their file on every update
// and assume a single writer per file.
package store
