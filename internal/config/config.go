// Package config resolves domainintel settings from flags, environment
// variables and the YAML config file, in that order of precedence.
package config

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Config is the effective configuration after all sources are merged.
type Config struct {
	// ConfigFile is the path the file layer was read from.
	ConfigFile string `mapstructure:"-"`

	Verbose   bool   `mapstructure:"verbose"`
	Output    string `mapstructure:"output"`
	Proxy     string `mapstructure:"proxy"`
	UserAgent string `mapstructure:"user_agent"`

	IPInfoToken string  `mapstructure:"ipinfo_token"`
	IPInfoURL   string  `mapstructure:"ipinfo_url"`
	IPInfoRPS   float64 `mapstructure:"ipinfo_rps"`
	GeoIPCityDB string  `mapstructure:"geoip_city_db"`
	GeoIPASNDB  string  `mapstructure:"geoip_asn_db"`

	// Nameserver is host:port; empty selects the system resolver's first server.
	Nameserver string `mapstructure:"nameserver"`
	// DoHURL, when set, sends record queries over DNS-over-HTTPS instead.
	DoHURL  string        `mapstructure:"doh_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	DetectPatterns string `mapstructure:"detect_patterns"`

	DomainsFile string `mapstructure:"domains_file"`
	RecordsFile string `mapstructure:"records_file"`
	NoSave      bool   `mapstructure:"no_save"`
}

const (
	DefaultOutput    = "table"
	DefaultIPInfoURL = "https://ipinfo.io"
	DefaultIPInfoRPS = 1.0
	DefaultTimeout   = 10 * time.Second

	DomainsFileName = "tracked-domains.xlsx"
	RecordsFileName = "domain-records.xlsx"
)

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindFloat
	kindDuration
)

// keys lists every setting that may appear in the config file.
var keys = map[string]keyKind{
	"verbose":         kindBool,
	"output":          kindString,
	"proxy":           kindString,
	"user_agent":      kindString,
	"ipinfo_token":    kindString,
	"ipinfo_url":      kindString,
	"ipinfo_rps":      kindFloat,
	"geoip_city_db":   kindString,
	"geoip_asn_db":    kindString,
	"nameserver":      kindString,
	"doh_url":         kindString,
	"detect_patterns": kindString,
	"timeout":         kindDuration,
	"domains_file":    kindString,
	"records_file":    kindString,
	"no_save":         kindBool,
}

// secretKeys are masked by Value unless reveal is set.
var secretKeys = map[string]bool{"ipinfo_token": true}

// ValidKeys returns every config key, sorted.
func ValidKeys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ValidateKey returns an error if key is not a known setting.
func ValidateKey(key string) error {
	if _, ok := keys[key]; !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// ParseValue converts the string form of a value into the type stored in
// the config file for key.
func ParseValue(key, value string) (any, error) {
	kind, ok := keys[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q is not a boolean", key, value)
		}
		return b, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid value for %s: %q is not a non-negative number", key, value)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid value for %s: %q is not a duration", key, value)
		}
		return value, nil
	}
	if key == "output" && !slices.Contains(OutputFormats(), value) {
		return nil, fmt.Errorf("invalid value for output: %q (want one of %v)", value, OutputFormats())
	}
	return value, nil
}

// KeyCompletions returns value suggestions for key.
func KeyCompletions(key string) []string {
	switch keys[key] {
	case kindBool:
		return []string{"true", "false"}
	}
	if key == "output" {
		return OutputFormats()
	}
	return nil
}

// Value returns the effective value of key as a string. Secrets are
// masked unless reveal is true.
func (c *Config) Value(key string, reveal bool) string {
	if secretKeys[key] && !reveal && c.IPInfoToken != "" {
		return "********"
	}
	switch key {
	case "verbose":
		return strconv.FormatBool(c.Verbose)
	case "output":
		return c.Output
	case "proxy":
		return c.Proxy
	case "user_agent":
		return c.UserAgent
	case "ipinfo_token":
		return c.IPInfoToken
	case "ipinfo_url":
		return c.IPInfoURL
	case "ipinfo_rps":
		return strconv.FormatFloat(c.IPInfoRPS, 'g', -1, 64)
	case "geoip_city_db":
		return c.GeoIPCityDB
	case "geoip_asn_db":
		return c.GeoIPASNDB
	case "nameserver":
		return c.Nameserver
	case "doh_url":
		return c.DoHURL
	case "timeout":
		return c.Timeout.String()
	case "detect_patterns":
		return c.DetectPatterns
	case "domains_file":
		return c.DomainsFile
	case "records_file":
		return c.RecordsFile
	case "no_save":
		return strconv.FormatBool(c.NoSave)
	}
	return ""
}
