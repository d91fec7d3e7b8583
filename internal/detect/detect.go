// Package detect infers the email, DNS hosting and SaaS providers a domain
// uses from its MX, NS and TXT records.
package detect

import (
	"strings"
)

// ServiceType identifies the category of a detected provider.
type ServiceType string

// ServiceType constants for each detection category.
const (
	TypeEmail        ServiceType = "Email"
	TypeDNS          ServiceType = "DNS"
	TypeVerification ServiceType = "Verification"
)

// Detection is one provider matched against one record.
type Detection struct {
	Type     ServiceType `json:"type"`
	Provider string      `json:"provider"`
	Evidence string      `json:"evidence"`
	// Source is the record type the evidence came from: ns, mx or txt.
	Source string `json:"source"`
}

// Detector matches records against a pattern set.
type Detector struct {
	patterns Patterns
}

// NewDetector returns a Detector for p.
func NewDetector(p Patterns) *Detector {
	return &Detector{patterns: p}
}

// Detect runs every matcher and returns detections in NS, MX, TXT order.
func (d *Detector) Detect(ns, mx, txt []string) []Detection {
	var out []Detection
	out = append(out, d.DNSHost(ns)...)
	out = append(out, d.EmailProvider(mx)...)
	out = append(out, d.TXTRecord(txt)...)
	return out
}

// matchSuffix returns true when host == suffix or host ends with "."+suffix.
func matchSuffix(host, suffix string) bool {
	h := strings.ToLower(strings.TrimSuffix(host, "."))
	suffix = strings.ToLower(strings.TrimPrefix(suffix, "."))
	return h == suffix || strings.HasSuffix(h, "."+suffix)
}

// dedup tracks (provider, evidence) pairs already reported.
type dedup map[string]bool

func (s dedup) first(provider, evidence string) bool {
	key := provider + "\x00" + evidence
	if s[key] {
		return false
	}
	s[key] = true
	return true
}
