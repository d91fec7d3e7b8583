package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tbckr/domainintel/internal/appdir"
	"github.com/tbckr/domainintel/internal/doh"
)

// EnvPrefix prefixes every environment variable override,
// e.g. DOMAININTEL_IPINFO_TOKEN.
const EnvPrefix = "DOMAININTEL"

// DefaultConfigPath returns <user config dir>/domainintel/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := appdir.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// RegisterFlags adds every config flag to flags. Flag names are the config
// keys with underscores replaced by hyphens.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (default <user config dir>/domainintel/config.yaml)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.StringP("output", "o", DefaultOutput, "output format: table, json, plain")
	flags.String("proxy", "", "proxy URL for HTTP and DNS (http, https, socks5)")
	flags.String("user-agent", "", "override the HTTP User-Agent")
	flags.String("ipinfo-token", "", "ipinfo.io API token")
	flags.String("ipinfo-url", DefaultIPInfoURL, "IP-intelligence API base URL")
	flags.Float64("ipinfo-rps", DefaultIPInfoRPS, "IP-intelligence requests per second (0 disables the limit)")
	flags.String("geoip-city-db", "", "GeoLite2 City database used when the API has no location")
	flags.String("geoip-asn-db", "", "GeoLite2 ASN database used when the API has no ASN")
	flags.String("nameserver", "", "DNS server (host:port) for record queries")
	flags.String("doh-url", "", "DNS-over-HTTPS endpoint for record queries (e.g. "+doh.DefaultURL+")")
	flags.String("detect-patterns", "", "provider detection patterns YAML (default built-in)")
	flags.Duration("timeout", DefaultTimeout, "timeout for each individual lookup")
	flags.String("domains-file", "", "tracked domains spreadsheet (default <data dir>/"+DomainsFileName+")")
	flags.String("records-file", "", "DNS records spreadsheet (default <data dir>/"+RecordsFileName+")")
	flags.Bool("no-save", false, "print the result without updating the spreadsheets")
}

// Load merges flags, environment and the config file into a Config. The
// config file is created empty with 0600 permissions if it does not exist.
func Load(flags *pflag.FlagSet) (*Config, error) {
	path, _ := flags.GetString("config")
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	if err := appdir.EnsureFile(path); err != nil {
		return nil, fmt.Errorf("creating config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range ValidKeys() {
		if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", f.Name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = path

	if err := cfg.fillDataPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) fillDataPaths() error {
	if c.DomainsFile != "" && c.RecordsFile != "" {
		return nil
	}
	dir, err := appdir.DataDir()
	if err != nil {
		return err
	}
	if c.DomainsFile == "" {
		c.DomainsFile = filepath.Join(dir, DomainsFileName)
	}
	if c.RecordsFile == "" {
		c.RecordsFile = filepath.Join(dir, RecordsFileName)
	}
	return nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := ParseValue("output", c.Output); err != nil {
		return err
	}
	if c.IPInfoRPS < 0 {
		return fmt.Errorf("ipinfo_rps must not be negative, got %v", c.IPInfoRPS)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if u, err := url.Parse(c.IPInfoURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid ipinfo_url %q", c.IPInfoURL)
	}
	if c.DoHURL != "" {
		if u, err := url.Parse(c.DoHURL); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return fmt.Errorf("invalid doh_url %q", c.DoHURL)
		}
	}
	if c.DomainsFile == c.RecordsFile {
		return fmt.Errorf("domains_file and records_file must differ, both are %q", c.DomainsFile)
	}
	return nil
}
