package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/likexian/whois"
	"github.com/oschwald/geoip2-golang"
	"github.com/spf13/cobra"

	"github.com/tbckr/domainintel/internal/config"
	"github.com/tbckr/domainintel/internal/detect"
	"github.com/tbckr/domainintel/internal/doh"
	"github.com/tbckr/domainintel/internal/enrich"
	"github.com/tbckr/domainintel/internal/httpclient"
	"github.com/tbckr/domainintel/internal/output"
	"github.com/tbckr/domainintel/internal/ratelimit"
	"github.com/tbckr/domainintel/internal/resolver"
	"github.com/tbckr/domainintel/internal/services"
	"github.com/tbckr/domainintel/internal/services/dnsrecords"
	"github.com/tbckr/domainintel/internal/services/netident"
	"github.com/tbckr/domainintel/internal/services/registration"
)

// deps holds fully-resolved runtime dependencies for a command.
type deps struct {
	logger *slog.Logger
	cfg    *config.Config
	format output.Format

	// newEnricher builds the lookup pipeline. The returned func releases
	// whatever the pipeline opened.
	newEnricher func() (enricher, func(), error)
	now         func() time.Time
}

// buildDeps resolves config, logger and output format.
func buildDeps(cmd *cobra.Command, stderr io.Writer) (*deps, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, logger: logger, format: format, now: time.Now}
	d.newEnricher = d.buildEnricher
	return d, nil
}

// buildEnricher wires the three lookup services from the resolved config.
func (d *deps) buildEnricher() (enricher, func(), error) {
	cfg := d.cfg

	httpOpts := httpclient.Options{
		Proxy:     cfg.Proxy,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Logger:    d.logger,
		Debug:     cfg.Verbose,
	}
	client, err := httpclient.New(httpOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating HTTP client: %w", err)
	}
	httpclient.AttachRateLimit(client, ratelimit.New(cfg.IPInfoRPS, 1))

	sysResolver, err := resolver.NewResolver(cfg.Proxy)
	if err != nil {
		return nil, nil, fmt.Errorf("creating DNS resolver: %w", err)
	}
	var exchanger services.DNSExchanger
	nameserver := cfg.Nameserver
	if cfg.DoHURL != "" {
		// The IP-intelligence rate limit must not throttle record queries.
		dohHTTP, err := httpclient.New(httpOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("creating DoH client: %w", err)
		}
		dohClient := doh.NewExchanger(dohHTTP, cfg.DoHURL)
		exchanger, nameserver = dohClient, dohClient.URL()
	} else {
		if exchanger, err = resolver.NewExchanger(cfg.Proxy, cfg.Timeout); err != nil {
			return nil, nil, fmt.Errorf("creating DNS client: %w", err)
		}
		if nameserver == "" {
			nameserver = resolver.DefaultNameserver()
		}
	}
	d.logger.Debug("using nameserver", "server", nameserver)

	patterns, err := detect.LoadPatterns(cfg.DetectPatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("loading detection patterns: %w", err)
	}

	dialer, err := resolver.Dialer(cfg.Proxy)
	if err != nil {
		return nil, nil, fmt.Errorf("creating WHOIS dialer: %w", err)
	}
	whoisClient := whois.NewClient().SetTimeout(cfg.Timeout).SetDialer(dialer)

	netOpts := []netident.Option{
		netident.WithBaseURL(cfg.IPInfoURL),
		netident.WithToken(cfg.IPInfoToken),
	}
	geo, err := openGeoIP(cfg.GeoIPCityDB, cfg.GeoIPASNDB)
	if err != nil {
		return nil, nil, err
	}
	if geo.enabled() {
		netOpts = append(netOpts, netident.WithGeoIP(geo.city, geo.asn))
	}

	e := enrich.New(
		netident.NewService(sysResolver, client, d.logger, netOpts...),
		registration.NewService(whoisClient, d.logger),
		dnsrecords.NewService(exchanger, nameserver, d.logger),
		d.logger,
		enrich.WithTimeout(cfg.Timeout),
		enrich.WithDetector(detect.NewDetector(patterns)),
	)
	return e, func() { geo.close(d.logger) }, nil
}

// geoDBs holds the optional GeoLite2 readers. A database that is not
// configured stays a nil interface.
type geoDBs struct {
	city    services.CityReader
	asn     services.ASNReader
	readers []*geoip2.Reader
}

func openGeoIP(cityPath, asnPath string) (*geoDBs, error) {
	g := &geoDBs{}
	if cityPath != "" {
		r, err := g.open(cityPath)
		if err != nil {
			return nil, err
		}
		g.city = r
	}
	if asnPath != "" {
		r, err := g.open(asnPath)
		if err != nil {
			return nil, err
		}
		g.asn = r
	}
	return g, nil
}

func (g *geoDBs) open(path string) (*geoip2.Reader, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		g.close(nil)
		return nil, fmt.Errorf("opening GeoIP database %s: %w", path, err)
	}
	g.readers = append(g.readers, r)
	return r, nil
}

func (g *geoDBs) enabled() bool { return len(g.readers) > 0 }

func (g *geoDBs) close(logger *slog.Logger) {
	for _, r := range g.readers {
		if err := r.Close(); err != nil && logger != nil {
			logger.Debug("closing GeoIP database", "error", err)
		}
	}
}

// writeResult formats and writes a result to stdout.
func writeResult(stdout io.Writer, d *deps, result any) error {
	if err := output.Write(stdout, d.format, result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
