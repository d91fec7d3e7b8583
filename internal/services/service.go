package services

// Source names identify a lookup in logs and in recorded lookup failures.
const (
	SourceNetwork      = "network"
	SourceRegistration = "registration"
	SourceDNS          = "dns"
)

// Result is implemented by every lookup result so callers can tell an
// answered-but-empty lookup apart from one that produced data.
type Result interface {
	IsEmpty() bool
}
